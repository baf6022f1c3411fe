// Package catalog aggregates tracking events into one entry per event.
package catalog

import (
	"sort"

	"github.com/phobologic/trackscan/internal/model"
)

// Build groups events by (event name, source). Each entry lists its call
// sites in input order and the union of their properties: a key keeps the
// first type seen for it, and widens to any when a later call site
// disagrees.
func Build(events []model.Event) []model.CatalogEntry {
	type entryKey struct {
		name string
		src  model.Source
	}
	index := make(map[entryKey]int)
	var entries []model.CatalogEntry

	for i := range events {
		ev := &events[i]
		key := entryKey{ev.EventName, ev.Source}
		pos, ok := index[key]
		if !ok {
			pos = len(entries)
			index[key] = pos
			entries = append(entries, model.CatalogEntry{
				EventName:  ev.EventName,
				Source:     ev.Source,
				Properties: model.NewProperties(),
			})
		}
		entry := &entries[pos]
		entry.Occurrences = append(entry.Occurrences, model.Occurrence{
			FilePath:     ev.FilePath,
			Line:         ev.Line,
			FunctionName: ev.FunctionName,
		})
		merge(entry.Properties, ev.Properties)
	}

	// Sort for deterministic output
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].EventName != entries[j].EventName {
			return entries[i].EventName < entries[j].EventName
		}
		return entries[i].Source < entries[j].Source
	})

	if entries == nil {
		entries = []model.CatalogEntry{}
	}
	return entries
}

func merge(dst, src *model.Properties) {
	if src == nil {
		return
	}
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		prev, ok := dst.Get(pair.Key)
		switch {
		case !ok:
			dst.Set(pair.Key, pair.Value)
		case !prev.Equal(pair.Value) && prev.Kind != model.Any:
			dst.Set(pair.Key, model.Primitive(model.Any))
		}
	}
}

// Filter returns the events whose source is in sources. An empty sources
// list keeps everything.
func Filter(events []model.Event, sources []model.Source) []model.Event {
	if len(sources) == 0 {
		return events
	}

	keep := make(map[model.Source]struct{}, len(sources))
	for _, s := range sources {
		keep[s] = struct{}{}
	}

	filtered := make([]model.Event, 0, len(events))
	for i := range events {
		if _, ok := keep[events[i].Source]; ok {
			filtered = append(filtered, events[i])
		}
	}
	return filtered
}
