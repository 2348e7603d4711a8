package api

import (
	"sort"

	"github.com/david/contract-finder/internal/summary"
	"github.com/david/contract-finder/internal/value"
)

// renderedSection is one displayable summary section with its display tree.
type renderedSection struct {
	Key   string     `json:"key"`
	Title string     `json:"title"`
	Icon  string     `json:"icon"`
	Node  value.Node `json:"node"`
}

// summaryView is the meta/sections partition of a document, ready for
// display.
type summaryView struct {
	Meta     map[string]value.Node `json:"meta"`
	Sections []renderedSection     `json:"sections"`
}

// buildView partitions a document into meta fields and rendered sections,
// ordering known sections by the registry and unknown ones after, in
// document order.
func (s *Server) buildView(doc summary.Document) summaryView {
	meta := make(map[string]value.Node)
	for key, v := range summary.Meta(doc) {
		meta[key] = value.Render(v)
	}

	entries := summary.Sections(doc)
	sections := make([]renderedSection, 0, len(entries))
	for _, e := range entries {
		title := s.Sections.Title(e.Key)
		if title == "" {
			title = value.HumanizeKey(e.Key)
		}
		sections = append(sections, renderedSection{
			Key:   e.Key,
			Title: title,
			Icon:  s.Sections.Icon(e.Key),
			Node:  value.Render(e.Val),
		})
	}

	sort.SliceStable(sections, func(i, j int) bool {
		ri, iKnown := s.Sections.Rank(sections[i].Key)
		rj, jKnown := s.Sections.Rank(sections[j].Key)
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		default:
			return false
		}
	})

	return summaryView{Meta: meta, Sections: sections}
}
