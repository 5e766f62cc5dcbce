package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// documentIndent is the per-level indentation of persisted documents.
const documentIndent = "    "

// Document is an ordered mapping from record key to the record's JSON form.
// Keys keep the order in which they were first inserted.
type Document struct {
	keys  []string
	items map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{items: make(map[string]json.RawMessage)}
}

// ParseDocument decodes a persisted collection. Empty input and JSON null
// both yield an empty document.
func ParseDocument(data []byte) (*Document, error) {
	doc := NewDocument()
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading document start: %w", err)
	}
	if tok == nil {
		return doc, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("document must be a JSON object, found %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("reading record %q: %w", key, err)
		}
		doc.Set(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading document end: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after document")
	}

	return doc, nil
}

// Len returns the number of records.
func (d *Document) Len() int {
	return len(d.keys)
}

// Keys returns the record keys in document order.
func (d *Document) Keys() []string {
	return slices.Clone(d.keys)
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.items[key]
	return ok
}

// Get returns the JSON form stored under key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	raw, ok := d.items[key]
	return raw, ok
}

// Set stores raw under key. An existing key keeps its position;
// a new key is appended.
func (d *Document) Set(key string, raw json.RawMessage) {
	if _, ok := d.items[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.items[key] = raw
}

// Delete removes key and reports whether it was present.
func (d *Document) Delete(key string) bool {
	if _, ok := d.items[key]; !ok {
		return false
	}
	delete(d.items, key)
	if i := slices.Index(d.keys, key); i >= 0 {
		d.keys = slices.Delete(d.keys, i, i+1)
	}
	return true
}

// Marshal encodes the document as an indented JSON object in key order,
// terminated by a newline.
func (d *Document) Marshal() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", key, err)
		}
		compact.Write(k)
		compact.WriteByte(':')
		compact.Write(d.items[key])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", documentIndent); err != nil {
		return nil, fmt.Errorf("indenting document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
