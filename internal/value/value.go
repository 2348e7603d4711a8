package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind tags the closed set of shapes a Value can take.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// Value is a closed variant over JSON-shaped data (the output of the analysis
// model). Map entries preserve insertion order, which also makes the durable
// round-trip byte-stable.
type Value struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
	list []Value
	keys []string
	m    map[string]Value
}

// Entry is one ordered key/value pair of a map-kinded Value.
type Entry struct {
	Key string
	Val Value
}

func Null() Value              { return Value{kind: KindNull} }
func Str(s string) Value       { return Value{kind: KindString, str: s} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func Num(n json.Number) Value  { return Value{kind: KindNumber, num: n} }
func NumFloat(f float64) Value { return Num(json.Number(formatFloat(f))) }

func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// NewMap returns an empty map-kinded Value.
func NewMap() Value {
	return Value{kind: KindMap, m: make(map[string]Value)}
}

func (v Value) Kind() Kind          { return v.kind }
func (v Value) String() string      { return v.str }
func (v Value) Number() json.Number { return v.num }
func (v Value) Bool() bool          { return v.b }
func (v Value) Items() []Value      { return v.list }
func (v Value) Keys() []string      { return v.keys }

// Len returns the number of list items or map entries.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.keys)
	default:
		return 0
	}
}

// Get looks up a map entry by key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	val, ok := v.m[key]
	return val, ok
}

// Set writes a map entry, preserving the position of an existing key and
// appending new keys at the end. Calling Set on a non-map Value panics; the
// zero Value is not a map.
func (v *Value) Set(key string, val Value) {
	if v.kind != KindMap {
		panic("value: Set on non-map value")
	}
	if _, exists := v.m[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.m[key] = val
}

// Entries returns the ordered key/value pairs of a map-kinded Value.
func (v Value) Entries() []Entry {
	if v.kind != KindMap {
		return nil
	}
	out := make([]Entry, 0, len(v.keys))
	for _, k := range v.keys {
		out = append(out, Entry{Key: k, Val: v.m[k]})
	}
	return out
}

// Equal reports deep equality, including map entry order.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.b == b.b
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for i, k := range a.keys {
			if b.keys[i] != k {
				return false
			}
			if !Equal(a.m[k], b.m[k]) {
				return false
			}
		}
		return true
	}
	return false
}

// UnmarshalJSON decodes via the token stream so map key order survives.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err == nil {
		return fmt.Errorf("value: trailing data after JSON value")
	}
	*v = parsed
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case string:
		return Str(t), nil
	case json.Number:
		return Num(t), nil
	case bool:
		return Bool(t), nil
	case json.Delim:
		switch t {
		case '[':
			list := Value{kind: KindList}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				list.list = append(list.list, item)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return Value{}, err
			}
			return list, nil
		case '{':
			obj := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("value: non-string object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // closing }
				return Value{}, err
			}
			return obj, nil
		}
	}

	return Value{}, fmt.Errorf("value: unexpected token %v", tok)
}

// MarshalJSON emits map entries in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindNumber:
		if v.num == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(string(v.num))
		}
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encodeValue(buf, v.m[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("value: unknown kind %d", v.kind)
	}
	return nil
}

func formatFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
