package value

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalPreservesKeyOrder(t *testing.T) {
	payload := `{"zulu":1,"alpha":"a","mike":{"y":true,"x":null}}`

	var v Value
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	keys := v.Keys()
	want := []string{"zulu", "alpha", "mike"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("key %d: expected %q, got %q", i, k, keys[i])
		}
	}

	nested, ok := v.Get("mike")
	if !ok || nested.Kind() != KindMap {
		t.Fatal("expected nested map under mike")
	}
	if nested.Keys()[0] != "y" {
		t.Fatalf("nested order lost: %v", nested.Keys())
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	payload := `{"title":"Widgets","count":12,"rate":3.5,"open":true,"tags":["a","b"],"nested":{"b":1,"a":2},"missing":null}`

	var v Value
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back Value
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-unmarshal failed: %v", err)
	}

	if !Equal(v, back) {
		t.Fatalf("round trip not equal:\n first: %s\nsecond: %s", payload, out)
	}
	if string(out) != payload {
		t.Fatalf("expected byte-stable encoding:\n want: %s\n  got: %s", payload, out)
	}
}

func TestEqualDistinguishesOrder(t *testing.T) {
	a := NewMap()
	a.Set("x", NumFloat(1))
	a.Set("y", NumFloat(2))

	b := NewMap()
	b.Set("y", NumFloat(2))
	b.Set("x", NumFloat(1))

	if Equal(a, b) {
		t.Fatal("maps with different key order must not compare equal")
	}
}

func TestSetOverwriteKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("first", Str("1"))
	m.Set("second", Str("2"))
	m.Set("first", Str("updated"))

	if m.Keys()[0] != "first" || m.Len() != 2 {
		t.Fatalf("overwrite moved or duplicated key: %v", m.Keys())
	}
	got, _ := m.Get("first")
	if got.String() != "updated" {
		t.Fatalf("expected updated, got %q", got.String())
	}
}

func TestUnmarshalRejectsTrailingData(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"a":1} {"b":2}`), &v); err == nil {
		t.Fatal("expected error for trailing data")
	}
}
