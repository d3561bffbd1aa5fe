// Package inquiry turns a selection into a chat message and hand-off link.
package inquiry

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/vitrina/internal/model"
)

// ErrEmptySelection is returned when there is nothing to ask about.
var ErrEmptySelection = errors.New("no items selected")

// DefaultGreeting opens every inquiry message.
const DefaultGreeting = "Olá! Tenho interesse nos seguintes itens do marketplace:"

// DefaultBaseURL is the chat link endpoint.
const DefaultBaseURL = "https://wa.me"

// Formatter renders inquiries. The zero value is not useful; start from
// Default.
type Formatter struct {
	Phone     string // recipient; empty lets the user pick a contact
	Currency  string
	Separator string // decimal separator
	Greeting  string
	BaseURL   string
}

// Inquiry is a message and the link that opens a chat pre-filled with it.
type Inquiry struct {
	Message string
	URL     string
}

// Default returns a formatter for Brazilian reais.
func Default() Formatter {
	return Formatter{
		Currency:  "R$",
		Separator: ",",
		Greeting:  DefaultGreeting,
		BaseURL:   DefaultBaseURL,
	}
}

// FormatPrice renders an amount with two fractional digits, e.g. "R$ 5,50".
func (f Formatter) FormatPrice(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if f.Separator != "" && f.Separator != "." {
		s = strings.Replace(s, ".", f.Separator, 1)
	}
	if f.Currency == "" {
		return s
	}
	return f.Currency + " " + s
}

// Build lists every item with its id, name and price, followed by the
// total, and encodes the message into a chat URL.
func (f Formatter) Build(items []model.Item, total decimal.Decimal) (*Inquiry, error) {
	if len(items) == 0 {
		return nil, ErrEmptySelection
	}

	var b strings.Builder
	b.WriteString(f.Greeting)
	b.WriteString("\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "* %s (ID: %d) %s\n", f.FormatPrice(item.Price), item.ID, item.Name)
	}
	fmt.Fprintf(&b, "\nTotal: %s", f.FormatPrice(total))

	msg := b.String()
	return &Inquiry{Message: msg, URL: f.link(msg)}, nil
}

func (f Formatter) link(msg string) string {
	base := strings.TrimRight(f.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if f.Phone != "" {
		base += "/" + url.PathEscape(digits(f.Phone))
	} else {
		base += "/"
	}
	return base + "?text=" + escape(msg)
}

// escape percent-encodes like encodeURIComponent: spaces become %20 and
// the marks ! ' ( ) * stay literal. QueryEscape already encodes a literal
// '+' as %2B, so every remaining '+' stands for a space.
func escape(s string) string {
	return uriMarks.Replace(url.QueryEscape(s))
}

var uriMarks = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// digits strips formatting such as "+55 (19) 99999-0000".
func digits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}
