package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexNumber is a numeric input that arrives either as a JSON number or as
// numeric text (form fields are posted as strings).
type FlexNumber struct {
	text string
	set  bool
}

// NumberFromString wraps raw user text.
func NumberFromString(s string) FlexNumber {
	return FlexNumber{text: strings.TrimSpace(s), set: true}
}

// NumberFromFloat wraps an already numeric value.
func NumberFromFloat(f float64) FlexNumber {
	return FlexNumber{text: decimal.NewFromFloat(f).String(), set: true}
}

// IsSet reports whether a non-blank value was supplied.
func (n FlexNumber) IsSet() bool { return n.set && n.text != "" }

func (n FlexNumber) String() string { return n.text }

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = FlexNumber{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberFromString(s)
		return nil
	}
	// Anything else is kept verbatim and rejected on coercion if it is not a number.
	*n = FlexNumber{text: string(b), set: true}
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.IsSet() {
		return []byte("null"), nil
	}
	if _, err := decimal.NewFromString(n.text); err == nil && json.Valid([]byte(n.text)) {
		return []byte(n.text), nil
	}
	return json.Marshal(n.text)
}

func (n FlexNumber) decimal(field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(n.text)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must be a number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return d, nil
}

// Price coerces the value to a non-negative amount.
func (n FlexNumber) Price() (float64, error) {
	d, err := n.decimal("price")
	if err != nil {
		return 0, err
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) {
		return 0, &ValidationError{Field: "price", Reason: "out of range"}
	}
	return f, nil
}

var maxStock = decimal.NewFromInt(math.MaxInt64)

// Stock coerces the value to a non-negative whole quantity.
func (n FlexNumber) Stock() (int64, error) {
	d, err := n.decimal("stock")
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, &ValidationError{Field: "stock", Reason: "must be a whole number"}
	}
	if d.GreaterThan(maxStock) {
		return 0, &ValidationError{Field: "stock", Reason: "out of range"}
	}
	return d.IntPart(), nil
}
