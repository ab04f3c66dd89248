package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/boddenberg/card-advisor-go/internal/domain"

	"gopkg.in/yaml.v3"
)

// document is the on-disk catalog layout.
type document struct {
	Currency   string               `yaml:"currency"`
	Categories []domain.Category    `yaml:"categories"`
	Cards      []domain.CardProfile `yaml:"cards"`
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, &domain.ErrCatalog{Message: "empty document"}
		}
		return nil, &domain.ErrCatalog{Message: err.Error()}
	}
	return New(doc.Currency, doc.Categories, doc.Cards)
}

// Encode writes c as YAML in the layout Parse reads.
func Encode(w io.Writer, c *Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{
		Currency:   c.Currency(),
		Categories: c.Categories(),
		Cards:      c.Cards(),
	}); err != nil {
		return err
	}
	return enc.Close()
}
