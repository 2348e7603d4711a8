package value

import (
	"encoding/json"
	"testing"
)

func mustValue(t *testing.T, payload string) Value {
	t.Helper()
	var v Value
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		t.Fatalf("unmarshal %q failed: %v", payload, err)
	}
	return v
}

func TestRenderNull(t *testing.T) {
	node := Render(Null())
	if node.Kind != NodeSentinel || node.Text != "N/A" {
		t.Fatalf("expected N/A sentinel, got %+v", node)
	}
}

func TestRenderURLString(t *testing.T) {
	node := Render(Str("https://sam.gov/x"))
	if node.Kind != NodeLink {
		t.Fatalf("expected link node, got %+v", node)
	}
	if node.Text != "https://sam.gov/x" {
		t.Fatalf("expected exact URL, got %q", node.Text)
	}
}

func TestRenderMultilineString(t *testing.T) {
	node := Render(Str("line one\nline two"))
	if node.Kind != NodePre {
		t.Fatalf("expected preformatted node, got %+v", node)
	}
}

func TestRenderScalars(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Str("plain"), "plain"},
		{NumFloat(42), "42"},
		{Bool(true), "true"},
		{Bool(false), "false"},
	}
	for _, tc := range cases {
		node := Render(tc.v)
		if node.Kind != NodeText || node.Text != tc.want {
			t.Fatalf("expected text %q, got %+v", tc.want, node)
		}
	}
}

func TestRenderEmptyList(t *testing.T) {
	node := Render(List())
	if node.Kind != NodeSentinel || node.Text != "None" {
		t.Fatalf("expected None sentinel, got %+v", node)
	}
}

func TestRenderEmptyMap(t *testing.T) {
	node := Render(NewMap())
	if node.Kind != NodeSentinel || node.Text != "Empty" {
		t.Fatalf("expected Empty sentinel, got %+v", node)
	}
}

func TestRenderPrimitiveListIsBullets(t *testing.T) {
	node := Render(mustValue(t, `["a","b"]`))
	if node.Kind != NodeBullets {
		t.Fatalf("expected bullets, got %+v", node)
	}
	if len(node.Bullets) != 2 || node.Bullets[0] != "a" || node.Bullets[1] != "b" {
		t.Fatalf("unexpected bullets: %v", node.Bullets)
	}
}

func TestRenderHeterogeneousListIsNumberedItems(t *testing.T) {
	node := Render(mustValue(t, `["a",{"k":1}]`))
	if node.Kind != NodeItems {
		t.Fatalf("expected numbered items, got %+v", node)
	}
	if len(node.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(node.Items))
	}
	if node.Items[0].Label != "Item 1" || node.Items[1].Label != "Item 2" {
		t.Fatalf("unexpected labels: %q, %q", node.Items[0].Label, node.Items[1].Label)
	}
}

func TestRenderMapHumanizesKeysInOrder(t *testing.T) {
	node := Render(mustValue(t, `{"x":1,"y":[2,3]}`))
	if node.Kind != NodeFields {
		t.Fatalf("expected fields node, got %+v", node)
	}
	if len(node.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(node.Fields))
	}
	if node.Fields[0].Label != "X" || node.Fields[1].Label != "Y" {
		t.Fatalf("unexpected labels: %q, %q", node.Fields[0].Label, node.Fields[1].Label)
	}
	second := node.Fields[1].Node
	if second.Kind != NodeBullets || len(second.Bullets) != 2 || second.Bullets[0] != "2" || second.Bullets[1] != "3" {
		t.Fatalf("expected [2 3] bullets, got %+v", second)
	}
}

func TestHumanizeKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"extract_all_key_contract_data", "Extract All Key Contract Data"},
		{"originalClosingDate", "Original Closing Date"},
		{"x", "X"},
		{"already Spaced", "Already Spaced"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := HumanizeKey(tc.in); got != tc.want {
			t.Fatalf("HumanizeKey(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
