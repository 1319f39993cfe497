package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/taxentia/ingest/chunk"
)

// Collection groups source documents of every supported type, matching the
// JSON layout produced by the upstream fetchers.
type Collection struct {
	Statutes    []StatuteSection `json:"statutes,omitempty"`
	Regulations []Regulation     `json:"regulations,omitempty"`
	Bulletins   []Bulletin       `json:"bulletins,omitempty"`
}

// Len returns the number of documents across all source types.
func (c *Collection) Len() int {
	return len(c.Statutes) + len(c.Regulations) + len(c.Bulletins)
}

// Documents validates every entry and converts the collection into chunker
// input. Statutes come first, then regulations, then bulletins, each group
// in its original order. Validation covers the whole collection before
// failing, so the returned error names every invalid entry.
func (c *Collection) Documents() ([]chunk.Document, error) {
	docs := make([]chunk.Document, 0, c.Len())
	var validationErrors []error

	for i := range c.Statutes {
		doc, err := convert(&c.Statutes[i])
		if err != nil {
			validationErrors = append(validationErrors,
				fmt.Errorf("statute %d (%s): %w", i, c.Statutes[i].Citation, err))
			continue
		}
		docs = append(docs, doc)
	}
	for i := range c.Regulations {
		doc, err := convert(&c.Regulations[i])
		if err != nil {
			validationErrors = append(validationErrors,
				fmt.Errorf("regulation %d (%s): %w", i, c.Regulations[i].Citation, err))
			continue
		}
		docs = append(docs, doc)
	}
	for i := range c.Bulletins {
		doc, err := convert(&c.Bulletins[i])
		if err != nil {
			validationErrors = append(validationErrors,
				fmt.Errorf("bulletin %d (%s): %w", i, c.Bulletins[i].Citation, err))
			continue
		}
		docs = append(docs, doc)
	}

	if len(validationErrors) > 0 {
		return nil, errors.Join(validationErrors...)
	}

	return docs, nil
}

func convert(src Source) (chunk.Document, error) {
	if err := src.Validate(); err != nil {
		return chunk.Document{}, err
	}
	text, meta := src.Source()
	return chunk.Document{Text: text, Metadata: meta}, nil
}

// Read decodes a collection from JSON.
func Read(r io.Reader) (*Collection, error) {
	var col Collection
	if err := json.NewDecoder(r).Decode(&col); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	return &col, nil
}

// ReadFile loads a collection from a JSON file.
func ReadFile(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	col, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return col, nil
}
