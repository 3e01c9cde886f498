package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry as stored in the document store.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	Category    string             `json:"category" bson:"category"`
	Stock       int64              `json:"stock" bson:"stock"`
	Image       string             `json:"image" bson:"image"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// ParseID validates a hex object id.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// ProductFilter narrows List. The zero value matches everything.
type ProductFilter struct {
	Search string
}

// Matches reports whether the product name contains Search, ignoring case.
func (f ProductFilter) Matches(p Product) bool {
	if f.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search))
}

// ProductInput is the create payload.
type ProductInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       FlexNumber `json:"price"`
	Category    string     `json:"category"`
	Stock       FlexNumber `json:"stock"`
	Image       string     `json:"image"`
}

// Build validates the input and returns the product to persist. The id is
// left empty for the store to assign.
func (in ProductInput) Build(createdAt time.Time) (Product, error) {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if !in.Price.IsSet() {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return Product{}, &ValidationError{Field: strings.Join(missing, ", "), Reason: "required"}
	}
	price, err := in.Price.Price()
	if err != nil {
		return Product{}, err
	}
	var stock int64
	if in.Stock.IsSet() {
		if stock, err = in.Stock.Stock(); err != nil {
			return Product{}, err
		}
	}
	return Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		Category:    in.Category,
		Stock:       stock,
		Image:       in.Image,
		CreatedAt:   createdAt,
	}, nil
}

// ProductUpdate is a partial update payload. Only the enumerated fields can
// change; id and createdAt are accepted and dropped, anything else is rejected.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *FlexNumber
	Category    *string
	Stock       *FlexNumber
	Image       *string
}

func (u *ProductUpdate) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return &ValidationError{Reason: "body must be a JSON object"}
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out ProductUpdate
	for _, key := range keys {
		val := raw[key]
		var err error
		switch key {
		case "id", "_id", "createdAt":
		case "name":
			out.Name, err = optionalString(key, val)
		case "description":
			out.Description, err = optionalString(key, val)
		case "category":
			out.Category, err = optionalString(key, val)
		case "image":
			out.Image, err = optionalString(key, val)
		case "price":
			out.Price, err = optionalNumber(key, val)
		case "stock":
			out.Stock, err = optionalNumber(key, val)
		default:
			err = &ValidationError{Field: key, Reason: "unknown field"}
		}
		if err != nil {
			return err
		}
	}
	*u = out
	return nil
}

func (u ProductUpdate) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 6)
	if u.Name != nil {
		m["name"] = *u.Name
	}
	if u.Description != nil {
		m["description"] = *u.Description
	}
	if u.Price != nil {
		m["price"] = *u.Price
	}
	if u.Category != nil {
		m["category"] = *u.Category
	}
	if u.Stock != nil {
		m["stock"] = *u.Stock
	}
	if u.Image != nil {
		m["image"] = *u.Image
	}
	return json.Marshal(m)
}

func optionalString(field string, val json.RawMessage) (*string, error) {
	var s *string
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, &ValidationError{Field: field, Reason: "must be a string"}
	}
	return s, nil
}

func optionalNumber(field string, val json.RawMessage) (*FlexNumber, error) {
	var n FlexNumber
	if err := json.Unmarshal(val, &n); err != nil {
		return nil, &ValidationError{Field: field, Reason: "must be a number"}
	}
	if !n.set {
		return nil, nil
	}
	return &n, nil
}

// ProductPatch is a validated, coerced update ready for the store.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int64
	Image       *string
}

// Patch validates the update. Required fields may change but not become blank.
func (u ProductUpdate) Patch() (ProductPatch, error) {
	var p ProductPatch
	for _, f := range []struct {
		name string
		val  *string
	}{{"name", u.Name}, {"description", u.Description}, {"category", u.Category}} {
		if f.val != nil && strings.TrimSpace(*f.val) == "" {
			return ProductPatch{}, &ValidationError{Field: f.name, Reason: "must not be empty"}
		}
	}
	p.Name, p.Description, p.Category, p.Image = u.Name, u.Description, u.Category, u.Image
	if u.Price != nil {
		if !u.Price.IsSet() {
			return ProductPatch{}, &ValidationError{Field: "price", Reason: "must not be empty"}
		}
		price, err := u.Price.Price()
		if err != nil {
			return ProductPatch{}, err
		}
		p.Price = &price
	}
	if u.Stock != nil {
		var stock int64
		if u.Stock.IsSet() {
			s, err := u.Stock.Stock()
			if err != nil {
				return ProductPatch{}, err
			}
			stock = s
		}
		p.Stock = &stock
	}
	return p, nil
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.Stock == nil && p.Image == nil
}

// Apply copies the present fields onto prod. ID and CreatedAt are untouched.
func (p ProductPatch) Apply(prod *Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.Image != nil {
		prod.Image = *p.Image
	}
}

// ListingDetails is the structured listing extracted from a product photo.
type ListingDetails struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
