// Package report writes analysis results as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/phobologic/trackscan/internal/model"
)

// WriteEvents writes events as an indented JSON array followed by a
// newline. A nil slice is written as [].
func WriteEvents(w io.Writer, events []model.Event) error {
	if events == nil {
		events = []model.Event{}
	}
	return write(w, events)
}

// WriteCatalog writes catalog entries the same way as WriteEvents.
func WriteCatalog(w io.Writer, entries []model.CatalogEntry) error {
	if entries == nil {
		entries = []model.CatalogEntry{}
	}
	return write(w, entries)
}

func write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
