// Package seed reads catalog drafts from YAML files.
package seed

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/vitrina/internal/model"
)

// File is the document layout of a seed file.
type File struct {
	Items []Entry `yaml:"items"`
}

// Entry is one item in a seed file. Price is kept as text so both "5.50"
// and "5,50" are accepted.
type Entry struct {
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	State       string `yaml:"state"`
	ImageURL    string `yaml:"image_url"`
}

// Draft converts the entry into a validated draft. A missing state
// defaults to to_sell.
func (e Entry) Draft() (model.Draft, error) {
	price, err := model.ParsePrice(e.Price)
	if err != nil {
		return model.Draft{}, err
	}

	state := model.StateToSell
	if s := strings.TrimSpace(e.State); s != "" {
		if state, err = model.ParseState(s); err != nil {
			return model.Draft{}, err
		}
	}

	d := model.Draft{
		Name:        strings.TrimSpace(e.Name),
		Price:       price,
		Description: e.Description,
		Category:    strings.TrimSpace(e.Category),
		State:       state,
	}
	if u := strings.TrimSpace(e.ImageURL); u != "" {
		d.ImageURL = model.SomeImage(u)
	}
	if err := d.Validate(); err != nil {
		return model.Draft{}, err
	}
	return d, nil
}

// Parse decodes a seed document. It fails on the first invalid entry.
func Parse(r io.Reader) ([]model.Draft, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding seed: %w", err)
	}

	drafts := make([]model.Draft, 0, len(f.Items))
	for i, e := range f.Items {
		d, err := e.Draft()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) ([]model.Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
