package tui

import (
	"encoding/base64"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"

	"shopmate/internal/domain"
)

const (
	fieldName = iota
	fieldDescription
	fieldPrice
	fieldCategory
	fieldStock
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Description", "Price", "Category", "Stock", "Image"}

// form is the add/edit product editor. editing is nil when adding.
type form struct {
	editing *domain.Product
	inputs  [fieldCount]textinput.Model
	focus   int
}

func newForm(p *domain.Product) form {
	f := form{editing: p}
	placeholders := [fieldCount]string{
		"Product name",
		"Write or generate a description",
		"0.00",
		"Category",
		"0",
		"Image URL or local file path",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = ""
		ti.CharLimit = 0
		ti.Cursor.SetMode(cursor.CursorStatic)
		f.inputs[i] = ti
	}
	if p != nil {
		f.inputs[fieldName].SetValue(p.Name)
		f.inputs[fieldDescription].SetValue(p.Description)
		f.inputs[fieldPrice].SetValue(strconv.FormatFloat(p.Price, 'f', -1, 64))
		f.inputs[fieldCategory].SetValue(p.Category)
		f.inputs[fieldStock].SetValue(strconv.FormatInt(p.Stock, 10))
		f.inputs[fieldImage].SetValue(p.Image)
	}
	f.inputs[fieldName].Focus()
	return f
}

func (f *form) value(field int) string { return strings.TrimSpace(f.inputs[field].Value()) }

func (f *form) set(field int, v string) { f.inputs[field].SetValue(v) }

func (f *form) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f *form) title() string {
	if f.editing != nil {
		return "Edit Product"
	}
	return "Add Product"
}

// input builds the create payload. Validation is left to the server.
func (f *form) input() (domain.ProductInput, error) {
	image, err := imageValue(f.value(fieldImage))
	if err != nil {
		return domain.ProductInput{}, err
	}
	in := domain.ProductInput{
		Name:        f.value(fieldName),
		Description: f.value(fieldDescription),
		Price:       domain.NumberFromString(f.value(fieldPrice)),
		Category:    f.value(fieldCategory),
		Image:       image,
	}
	if s := f.value(fieldStock); s != "" {
		in.Stock = domain.NumberFromString(s)
	}
	return in, nil
}

// update sends every field back, matching what the form shows.
func (f *form) update() (domain.ProductUpdate, error) {
	in, err := f.input()
	if err != nil {
		return domain.ProductUpdate{}, err
	}
	u := domain.ProductUpdate{
		Name:        &in.Name,
		Description: &in.Description,
		Price:       &in.Price,
		Category:    &in.Category,
		Image:       &in.Image,
	}
	if in.Stock.IsSet() {
		u.Stock = &in.Stock
	}
	return u, nil
}

// localImage reports whether the image field names a readable file.
func (f *form) localImage() (string, bool) {
	path := f.value(fieldImage)
	if path == "" || isRemote(path) {
		return "", false
	}
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "data:")
}

// imageValue inlines a local file as a data URI. URLs, data URIs and
// anything that is not a file are stored as typed.
func imageValue(s string) (string, error) {
	if s == "" || isRemote(s) {
		return s, nil
	}
	st, err := os.Stat(s)
	if err != nil || !st.Mode().IsRegular() {
		return s, nil
	}
	data, err := os.ReadFile(s)
	if err != nil {
		return "", err
	}
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
