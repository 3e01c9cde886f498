package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shopmate/internal/domain"
)

// ProductAPI is the subset of the REST client the console drives.
type ProductAPI interface {
	List(ctx context.Context, search string) ([]domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id string, upd domain.ProductUpdate) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	GenerateDescription(ctx context.Context, name, category string) (string, error)
	GenerateDetailsFromImage(ctx context.Context, path string) (domain.ListingDetails, error)
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirm
)

type (
	productsMsg struct {
		products []domain.Product
		err      error
	}
	savedMsg struct {
		created bool
		err     error
	}
	deletedMsg struct {
		err error
	}
	descriptionMsg struct {
		text string
		err  error
	}
	detailsMsg struct {
		details domain.ListingDetails
		err     error
	}
)

// Model is the Bubble Tea model for the product admin console.
type Model struct {
	api      ProductAPI
	timeout  time.Duration
	mode     mode
	table    table.Model
	search   textinput.Model
	query    string
	products []domain.Product
	form     form
	status   string
	busy     bool
	width    int
}

// New creates the console. timeout bounds every API call.
func New(api ProductAPI, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	si := textinput.New()
	si.Prompt = "/ "
	si.Placeholder = "Search products by name"
	si.CharLimit = 0
	si.Cursor.SetMode(cursor.CursorStatic)

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	return Model{api: api, timeout: timeout, table: t, search: si, status: "Loading products..."}
}

func (m Model) Init() tea.Cmd { return m.refresh() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(max(3, msg.Height-8))
		return m, nil
	case productsMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.products = msg.products
		m.table.SetRows(rows(msg.products))
		if m.table.Cursor() >= len(msg.products) {
			m.table.SetCursor(max(0, len(msg.products)-1))
		}
		m.status = fmt.Sprintf("%d products", len(msg.products))
		if m.query != "" {
			m.status += fmt.Sprintf(" matching %q", m.query)
		}
		return m, nil
	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.mode = modeList
		m.status = "Product updated"
		if msg.created {
			m.status = "Product created"
		}
		return m, m.refresh()
	case deletedMsg:
		m.busy = false
		m.mode = modeList
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.status = "Product removed"
		return m, m.refresh()
	case descriptionMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error generating description: " + msg.err.Error()
			return m, nil
		}
		m.form.set(fieldDescription, msg.text)
		m.status = "Description generated"
		return m, nil
	case detailsMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error analyzing image: " + msg.err.Error()
			return m, nil
		}
		m.form.set(fieldName, msg.details.Name)
		m.form.set(fieldDescription, msg.details.Description)
		m.form.set(fieldCategory, msg.details.Category)
		m.status = "Details filled from image"
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.query)
		m.search.Focus()
		return m, nil
	case "a":
		m.mode = modeForm
		m.form = newForm(nil)
		m.status = ""
		return m, nil
	case "e", "enter":
		if p, ok := m.selected(); ok {
			m.mode = modeForm
			m.form = newForm(&p)
			m.status = ""
		}
		return m, nil
	case "d":
		if p, ok := m.selected(); ok {
			m.mode = modeConfirm
			m.status = fmt.Sprintf("Delete %q? (y/n)", p.Name)
		}
		return m, nil
	case "r":
		m.status = "Refreshing..."
		return m, m.refresh()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.query = strings.TrimSpace(m.search.Value())
		m.search.Blur()
		m.mode = modeList
		return m, m.refresh()
	case tea.KeyEsc:
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		p, ok := m.selected()
		if !ok {
			m.mode = modeList
			return m, nil
		}
		m.busy = true
		m.status = "Deleting..."
		return m, m.remove(p.ID.Hex())
	case "n", "N", "esc":
		m.mode = modeList
		m.status = ""
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.status = ""
		return m, nil
	case "tab", "down":
		m.form.move(1)
		return m, nil
	case "shift+tab", "up":
		m.form.move(-1)
		return m, nil
	case "ctrl+g":
		name, category := m.form.value(fieldName), m.form.value(fieldCategory)
		if name == "" && category == "" {
			m.status = "Please enter product name or category first"
			return m, nil
		}
		m.busy = true
		m.status = "Generating description..."
		return m, m.describe(name, category)
	case "ctrl+o":
		path, ok := m.form.localImage()
		if !ok {
			m.status = "Enter a local image file path to use Snap & Sell"
			return m, nil
		}
		m.busy = true
		m.status = "Analyzing image..."
		return m, m.analyze(path)
	case "ctrl+s":
		cmd, err := m.save()
		if err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		m.busy = true
		m.status = "Saving..."
		return m, cmd
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

func (m Model) selected() (domain.Product, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.products) {
		return domain.Product{}, false
	}
	return m.products[i], true
}

func (m Model) withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m Model) refresh() tea.Cmd {
	api, query := m.api, m.query
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		products, err := api.List(ctx, query)
		return productsMsg{products: products, err: err}
	}
}

func (m Model) save() (tea.Cmd, error) {
	api := m.api
	if m.form.editing == nil {
		in, err := m.form.input()
		if err != nil {
			return nil, err
		}
		return func() tea.Msg {
			ctx, cancel := m.withTimeout()
			defer cancel()
			_, err := api.Create(ctx, in)
			return savedMsg{created: true, err: err}
		}, nil
	}
	upd, err := m.form.update()
	if err != nil {
		return nil, err
	}
	id := m.form.editing.ID.Hex()
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		_, err := api.Update(ctx, id, upd)
		return savedMsg{err: err}
	}, nil
}

func (m Model) remove(id string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		return deletedMsg{err: api.Delete(ctx, id)}
	}
}

func (m Model) describe(name, category string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		text, err := api.GenerateDescription(ctx, name, category)
		return descriptionMsg{text: text, err: err}
	}
}

func (m Model) analyze(path string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		d, err := api.GenerateDetailsFromImage(ctx, path)
		return detailsMsg{details: d, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ShopMate Admin"))
	b.WriteString("\n")
	switch m.mode {
	case modeForm:
		b.WriteString(m.viewForm())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • ctrl+g generate description • ctrl+o snap & sell • ctrl+s save • esc cancel"))
	default:
		if m.mode == modeSearch {
			b.WriteString(boxStyle.Render(m.search.View()))
		} else if m.query != "" {
			b.WriteString(helpStyle.Render("search: " + m.query))
		}
		b.WriteString("\n")
		if len(m.products) == 0 {
			b.WriteString(boxStyle.Render("No products found."))
		} else {
			b.WriteString(boxStyle.Render(m.table.View()))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("/ search • a add • e edit • d delete • r refresh • q quit"))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

func (m Model) viewForm() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.form.title()))
	b.WriteString("\n\n")
	for i, label := range fieldLabels {
		style := labelStyle
		if i == m.form.focus {
			style = focusedLabelStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n")
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func columns(width int) []table.Column {
	name := max(16, width-58)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Category", Width: 16},
		{Title: "Price", Width: 10},
		{Title: "Stock", Width: 8},
		{Title: "Image", Width: 6},
	}
}

func rows(products []domain.Product) []table.Row {
	out := make([]table.Row, len(products))
	for i, p := range products {
		image := ""
		if p.Image != "" {
			image = "yes"
		}
		out[i] = table.Row{p.Name, p.Category, fmt.Sprintf("$%.2f", p.Price), strconv.FormatInt(p.Stock, 10), image}
	}
	return out
}

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boxStyle          = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	focusedLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
