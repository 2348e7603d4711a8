package value

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeKind tags the display-tree node shapes.
type NodeKind string

const (
	NodeText     NodeKind = "text"     // plain scalar
	NodeLink     NodeKind = "link"     // http(s) URL
	NodePre      NodeKind = "pre"      // multi-line string, preformatted
	NodeSentinel NodeKind = "sentinel" // "N/A", "None", "Empty"
	NodeBullets  NodeKind = "bullets"  // homogeneous primitive list
	NodeItems    NodeKind = "items"    // numbered heterogeneous list
	NodeFields   NodeKind = "fields"   // humanized key/value pairs
)

// Node is one node of the rendered display tree.
type Node struct {
	Kind    NodeKind `json:"kind"`
	Text    string   `json:"text,omitempty"` // content for text/pre/sentinel, URL for link
	Bullets []string `json:"bullets,omitempty"`
	Items   []Item   `json:"items,omitempty"`
	Fields  []Field  `json:"fields,omitempty"`
}

// Item is a numbered child of a heterogeneous list node.
type Item struct {
	Label string `json:"label"` // "Item 1", "Item 2", ...
	Node  Node   `json:"node"`
}

// Field is one labeled entry of a map node.
type Field struct {
	Label string `json:"label"`
	Node  Node   `json:"node"`
}

// Render projects a Value into its display tree. It is total: every Value
// yields a node, and recursion is bounded by the input's depth.
func Render(v Value) Node {
	switch v.Kind() {
	case KindNull:
		return Node{Kind: NodeSentinel, Text: "N/A"}

	case KindString:
		s := v.String()
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			return Node{Kind: NodeLink, Text: s}
		}
		if strings.Contains(s, "\n") {
			return Node{Kind: NodePre, Text: s}
		}
		return Node{Kind: NodeText, Text: s}

	case KindNumber:
		return Node{Kind: NodeText, Text: string(v.Number())}

	case KindBool:
		return Node{Kind: NodeText, Text: fmt.Sprintf("%t", v.Bool())}

	case KindList:
		items := v.Items()
		if len(items) == 0 {
			return Node{Kind: NodeSentinel, Text: "None"}
		}
		if primitivesOnly(items) {
			bullets := make([]string, len(items))
			for i, item := range items {
				if item.Kind() == KindString {
					bullets[i] = item.String()
				} else {
					bullets[i] = string(item.Number())
				}
			}
			return Node{Kind: NodeBullets, Bullets: bullets}
		}
		out := make([]Item, len(items))
		for i, item := range items {
			out[i] = Item{Label: fmt.Sprintf("Item %d", i+1), Node: Render(item)}
		}
		return Node{Kind: NodeItems, Items: out}

	case KindMap:
		entries := v.Entries()
		if len(entries) == 0 {
			return Node{Kind: NodeSentinel, Text: "Empty"}
		}
		fields := make([]Field, len(entries))
		for i, e := range entries {
			fields[i] = Field{Label: HumanizeKey(e.Key), Node: Render(e.Val)}
		}
		return Node{Kind: NodeFields, Fields: fields}
	}

	return Node{Kind: NodeSentinel, Text: "N/A"}
}

func primitivesOnly(items []Value) bool {
	for _, item := range items {
		if item.Kind() != KindString && item.Kind() != KindNumber {
			return false
		}
	}
	return true
}

// HumanizeKey converts a machine-case key (snake_case or camelCase) into a
// title-cased label: "price_comparison" -> "Price Comparison",
// "originalClosingDate" -> "Original Closing Date".
func HumanizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)

	prev := rune(0)
	for _, r := range key {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
