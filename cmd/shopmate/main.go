package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"shopmate/internal/config"
)

const configFlag = "config"

var rootFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to YAML config file (optional; uses ./shopmate.yaml or ~/.config/shopmate/config.yaml if not provided)",
	},
}

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "shopmate",
		Short:         "Product catalog API, embedding job and admin console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cobraflags.RegisterMap(root, rootFlags)
	root.AddCommand(newServeCommand(), newEmbedCommand(), newAdminCommand())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.AppConfig, error) {
	path := rootFlags[configFlag].GetString()
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.LoadFile(path)
}
