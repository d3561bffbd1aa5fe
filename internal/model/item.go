package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a catalog entry.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	State       State           `json:"state"`
	ImageURL    ImageURL        `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Draft holds the client-settable fields of an item. The persistence
// service assigns ID and timestamps.
type Draft struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	State       State           `json:"state"`
	ImageURL    ImageURL        `json:"image_url"`
}

// Validate checks that the draft can be persisted.
func (d Draft) Validate() error {
	if err := requireText("name", d.Name); err != nil {
		return err
	}
	if err := checkPrice(d.Price); err != nil {
		return err
	}
	if err := requireText("description", d.Description); err != nil {
		return err
	}
	if err := requireText("category", d.Category); err != nil {
		return err
	}
	if !d.State.Valid() {
		return &ValidationError{Field: "state", Message: fmt.Sprintf("unknown state %q", d.State)}
	}
	return nil
}

// Patch carries the fields of an update. Nil fields are left unchanged.
type Patch struct {
	Name        *string          `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	State       *State           `json:"state,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
}

// Empty reports whether the patch sets no fields.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil &&
		p.Category == nil && p.State == nil && p.ImageURL == nil
}

// Validate applies the draft rules to every field the patch sets.
func (p Patch) Validate() error {
	if p.Name != nil {
		if err := requireText("name", *p.Name); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := checkPrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := requireText("description", *p.Description); err != nil {
			return err
		}
	}
	if p.Category != nil {
		if err := requireText("category", *p.Category); err != nil {
			return err
		}
	}
	if p.State != nil && !p.State.Valid() {
		return &ValidationError{Field: "state", Message: fmt.Sprintf("unknown state %q", *p.State)}
	}
	if p.ImageURL != nil && strings.TrimSpace(*p.ImageURL) == "" {
		return &ValidationError{Field: "image_url", Message: "image url must not be blank"}
	}
	return nil
}

// Apply returns a copy of item with the patch fields written over it.
func (p Patch) Apply(item Item) Item {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.State != nil {
		item.State = *p.State
	}
	if p.ImageURL != nil {
		item.ImageURL = SomeImage(*p.ImageURL)
	}
	return item
}

// ParsePrice parses user input such as "10", "5.50" or "5,50".
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: "price", Message: "price required"}
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "price", Message: fmt.Sprintf("invalid price %q", s)}
	}
	if err := checkPrice(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func checkPrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return &ValidationError{Field: "price", Message: "price must not be negative"}
	}
	return nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: field + " required"}
	}
	return nil
}
