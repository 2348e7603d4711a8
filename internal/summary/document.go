package summary

import (
	"github.com/david/contract-finder/internal/models"
	"github.com/david/contract-finder/internal/value"
)

// Document is the structured summary for one opportunity: a map-kinded value
// whose entries split into reserved meta fields and displayable sections.
type Document = value.Value

// The reserved meta keys merged into every document after generation. They
// are never rendered as sections.
const (
	MetaTitle       = "title"
	MetaID          = "id"
	MetaAgency      = "agency"
	MetaLink        = "originalOpportunityLink"
	MetaClosingDate = "originalClosingDate"
)

var metaKeySet = map[string]struct{}{
	MetaTitle:       {},
	MetaID:          {},
	MetaAgency:      {},
	MetaLink:        {},
	MetaClosingDate: {},
}

func IsMetaKey(key string) bool {
	_, ok := metaKeySet[key]
	return ok
}

// Sections returns the ordered displayable entries of a document, with the
// meta fields partitioned out.
func Sections(doc Document) []value.Entry {
	var out []value.Entry
	for _, e := range doc.Entries() {
		if !IsMetaKey(e.Key) {
			out = append(out, e)
		}
	}
	return out
}

// Meta returns the document's meta entries keyed by meta field name.
func Meta(doc Document) map[string]value.Value {
	out := make(map[string]value.Value, len(metaKeySet))
	for key := range metaKeySet {
		if v, ok := doc.Get(key); ok {
			out[key] = v
		}
	}
	return out
}

// mergeMeta copies the model output and stamps the five meta fields from the
// opportunity record on top. The merge always wins over same-named keys in
// the model output, so meta integrity never depends on model behavior.
func mergeMeta(raw value.Value, opp *models.Opportunity) Document {
	merged := value.NewMap()
	for _, e := range raw.Entries() {
		merged.Set(e.Key, e.Val)
	}

	merged.Set(MetaTitle, value.Str(opp.Title))
	merged.Set(MetaID, value.Str(opp.ID))
	merged.Set(MetaAgency, value.Str(nonEmpty(opp.Agency, "N/A")))
	merged.Set(MetaLink, nullableStr(opp.Link))
	merged.Set(MetaClosingDate, nullableStr(opp.ClosingDate))
	return merged
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func nullableStr(s string) value.Value {
	if s == "" {
		return value.Null()
	}
	return value.Str(s)
}
