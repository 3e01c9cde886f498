package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	qt "github.com/frankban/quicktest"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopmate/internal/domain"
)

type fakeAPI struct {
	products    []domain.Product
	searches    []string
	created     []domain.ProductInput
	updated     map[string]domain.ProductUpdate
	deleted     []string
	describeArg [2]string
	imagePath   string
	details     domain.ListingDetails
	err         error
}

func (f *fakeAPI) List(_ context.Context, search string) ([]domain.Product, error) {
	f.searches = append(f.searches, search)
	var out []domain.Product
	for _, p := range f.products {
		if (domain.ProductFilter{Search: search}).Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAPI) Create(_ context.Context, in domain.ProductInput) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	f.created = append(f.created, in)
	p := domain.Product{ID: primitive.NewObjectID(), Name: in.Name, Category: in.Category}
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, upd domain.ProductUpdate) (domain.Product, error) {
	if f.updated == nil {
		f.updated = map[string]domain.ProductUpdate{}
	}
	f.updated[id] = upd
	return domain.Product{}, nil
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	kept := f.products[:0]
	for _, p := range f.products {
		if p.ID.Hex() != id {
			kept = append(kept, p)
		}
	}
	f.products = kept
	return nil
}

func (f *fakeAPI) GenerateDescription(_ context.Context, name, category string) (string, error) {
	f.describeArg = [2]string{name, category}
	return "Generated copy.", nil
}

func (f *fakeAPI) GenerateDetailsFromImage(_ context.Context, path string) (domain.ListingDetails, error) {
	f.imagePath = path
	return f.details, f.err
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds a message and then runs every command it produces until the
// model settles.
func drive(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	m = next.(Model)
	for cmd != nil {
		out := cmd()
		if out == nil {
			break
		}
		if _, ok := out.(tea.QuitMsg); ok {
			break
		}
		next, cmd = m.Update(out)
		m = next.(Model)
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = drive(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func started(api *fakeAPI) Model {
	m := New(api, 0)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)
	return drive(m, m.Init()())
}

func seeded() *fakeAPI {
	return &fakeAPI{products: []domain.Product{
		{ID: primitive.NewObjectID(), Name: "Coffee Mug", Category: "Kitchen", Price: 9.5, Stock: 3},
		{ID: primitive.NewObjectID(), Name: "Plate", Category: "Kitchen", Price: 4},
	}}
}

func TestInitialLoad(t *testing.T) {
	c := qt.New(t)
	m := started(seeded())

	c.Assert(m.products, qt.HasLen, 2)
	c.Assert(m.status, qt.Equals, "2 products")
	c.Assert(strings.Contains(m.View(), "Coffee Mug"), qt.IsTrue)
}

func TestSearch(t *testing.T) {
	c := qt.New(t)
	api := seeded()
	m := started(api)

	m = drive(m, key("/"))
	c.Assert(m.mode, qt.Equals, modeSearch)
	m = typeText(m, "mug")
	m = drive(m, key("enter"))

	c.Assert(m.mode, qt.Equals, modeList)
	c.Assert(api.searches, qt.DeepEquals, []string{"", "mug"})
	c.Assert(m.products, qt.HasLen, 1)
	c.Assert(m.status, qt.Equals, `1 products matching "mug"`)
}

func TestAddProduct(t *testing.T) {
	c := qt.New(t)
	api := seeded()
	m := started(api)

	m = drive(m, key("a"))
	c.Assert(m.mode, qt.Equals, modeForm)
	m = typeText(m, "Teapot")
	m = drive(m, key("tab"))
	m = typeText(m, "Pours tea")
	m = drive(m, key("tab"))
	m = typeText(m, "19.99")
	m = drive(m, key("tab"))
	m = typeText(m, "Kitchen")
	m = drive(m, key("ctrl+s"))

	c.Assert(m.mode, qt.Equals, modeList)
	c.Assert(api.created, qt.HasLen, 1)
	in := api.created[0]
	c.Assert(in.Name, qt.Equals, "Teapot")
	c.Assert(in.Description, qt.Equals, "Pours tea")
	c.Assert(in.Price.String(), qt.Equals, "19.99")
	c.Assert(in.Stock.IsSet(), qt.IsFalse)
	c.Assert(m.products, qt.HasLen, 3)
	c.Assert(m.status, qt.Equals, "3 products")
}

func TestSaveErrorKeepsForm(t *testing.T) {
	c := qt.New(t)
	api := seeded()
	m := started(api)
	api.err = errors.New("Please fill in all required fields")

	m = drive(m, key("a"))
	m = drive(m, key("ctrl+s"))

	c.Assert(m.mode, qt.Equals, modeForm)
	c.Assert(m.status, qt.Equals, "Error: Please fill in all required fields")
}

func TestEditProduct(t *testing.T) {
	c := qt.New(t)
	api := seeded()
	m := started(api)
	id := api.products[0].ID.Hex()

	m = drive(m, key("e"))
	c.Assert(m.form.value(fieldName), qt.Equals, "Coffee Mug")
	c.Assert(m.form.value(fieldPrice), qt.Equals, "9.5")
	c.Assert(m.form.value(fieldStock), qt.Equals, "3")
	m = typeText(m, " XL")
	m = drive(m, key("ctrl+s"))

	upd, ok := api.updated[id]
	c.Assert(ok, qt.IsTrue)
	c.Assert(*upd.Name, qt.Equals, "Coffee Mug XL")
	c.Assert(upd.Stock.String(), qt.Equals, "3")
	c.Assert(m.status, qt.Equals, "2 products")
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	c := qt.New(t)
	api := seeded()
	m := started(api)
	first := api.products[0].ID.Hex()

	m = drive(m, key("d"))
	c.Assert(m.mode, qt.Equals, modeConfirm)
	m = drive(m, key("n"))
	c.Assert(api.deleted, qt.HasLen, 0)

	m = drive(m, key("d"))
	m = drive(m, key("y"))
	c.Assert(api.deleted, qt.DeepEquals, []string{first})
	c.Assert(m.products, qt.HasLen, 1)
	c.Assert(m.mode, qt.Equals, modeList)
}

func TestGenerateDescriptionNeedsHint(t *testing.T) {
	c := qt.New(t)
	api := seeded()
	m := started(api)

	m = drive(m, key("a"))
	m = drive(m, key("ctrl+g"))
	c.Assert(m.status, qt.Equals, "Please enter product name or category first")
	c.Assert(api.describeArg, qt.Equals, [2]string{})

	m = typeText(m, "Mug")
	m = drive(m, key("ctrl+g"))
	c.Assert(api.describeArg, qt.Equals, [2]string{"Mug", ""})
	c.Assert(m.form.value(fieldDescription), qt.Equals, "Generated copy.")
}

func TestSnapAndSell(t *testing.T) {
	c := qt.New(t)
	api := seeded()
	api.details = domain.ListingDetails{Name: "Blue Mug", Description: "Glazed.", Category: "Kitchen"}
	m := started(api)

	m = drive(m, key("a"))
	for i := 0; i < fieldImage; i++ {
		m = drive(m, key("tab"))
	}
	m = typeText(m, "https://example.com/mug.png")
	m = drive(m, key("ctrl+o"))
	c.Assert(api.imagePath, qt.Equals, "")
	c.Assert(m.status, qt.Equals, "Enter a local image file path to use Snap & Sell")

	path := filepath.Join(c.TempDir(), "mug.png")
	c.Assert(os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600), qt.IsNil)
	m.form.set(fieldImage, path)
	m = drive(m, key("ctrl+o"))

	c.Assert(api.imagePath, qt.Equals, path)
	c.Assert(m.form.value(fieldName), qt.Equals, "Blue Mug")
	c.Assert(m.form.value(fieldDescription), qt.Equals, "Glazed.")
	c.Assert(m.form.value(fieldCategory), qt.Equals, "Kitchen")
}

func TestImageValue(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "mug.png")
	c.Assert(os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600), qt.IsNil)

	got, err := imageValue(path)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "data:image/png;base64,iVBORw0KGgo=")

	for _, s := range []string{"", "https://example.com/a.jpg", "data:image/png;base64,AAAA", "not/a/file.png"} {
		got, err := imageValue(s)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, s)
	}
}

func TestEscCancelsForm(t *testing.T) {
	c := qt.New(t)
	api := seeded()
	m := started(api)

	m = drive(m, key("a"))
	m = typeText(m, "Draft")
	m = drive(m, key("esc"))
	c.Assert(m.mode, qt.Equals, modeList)
	c.Assert(api.created, qt.HasLen, 0)
}
