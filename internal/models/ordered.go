package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ordered is a string-keyed map that remembers insertion order. Catalog
// documents are JSON objects whose key order is the display order, which a
// plain Go map would lose. The zero value is an empty map ready to use.
type Ordered[V any] struct {
	keys   []string
	values map[string]V
}

// Set stores v under key. A new key goes to the end; an existing key keeps
// its position.
func (o *Ordered[V]) Set(key string, v V) {
	if o.values == nil {
		o.values = make(map[string]V)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o Ordered[V]) Get(key string) (V, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o Ordered[V]) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of entries.
func (o Ordered[V]) Len() int {
	return len(o.keys)
}

// Each calls fn for every entry in insertion order.
func (o Ordered[V]) Each(fn func(key string, v V)) {
	for _, k := range o.keys {
		fn(k, o.values[k])
	}
}

// MarshalJSON writes a JSON object with keys in insertion order.
func (o Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping its key order. null leaves the
// map empty.
func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	o.keys = nil
	o.values = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		o.Set(key, v)
	}

	_, err = dec.Token()
	return err
}
