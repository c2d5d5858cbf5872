package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

// Product is one catalog record as stored in products.json.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"` // bare filename, path or URL; may not exist on disk

	// Extra holds every other field of the record verbatim so a rewrite of
	// the catalog keeps them.
	Extra map[string]json.RawMessage `json:"-"`
}

var productFields = map[string]struct{}{
	"id": {}, "name": {}, "type": {}, "price": {}, "description": {}, "image": {},
}

// product has Product's fields without its methods.
type product Product

func (p *Product) UnmarshalJSON(b []byte) error {
	var known product
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k := range raw {
		// decoding matches field names case-insensitively
		if _, ok := productFields[strings.ToLower(k)]; ok {
			delete(raw, k)
		}
	}

	known.Extra = nil
	if len(raw) > 0 {
		known.Extra = raw
	}
	*p = Product(known)
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	b, err := encodeNoEscape(product(p))
	if err != nil {
		return nil, err
	}
	return AppendExtra(b, p.Extra)
}

// AppendExtra adds the fields of extra, in key order, to the encoded JSON
// object obj. Keys already present in obj must not appear in extra.
func AppendExtra(obj []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return obj, nil
	}

	obj = bytes.TrimSpace(obj)
	if len(obj) < 2 || obj[len(obj)-1] != '}' {
		return nil, errors.New("append extra fields: not a JSON object")
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(obj[:len(obj)-1])
	empty := len(bytes.TrimSpace(obj[1:len(obj)-1])) == 0
	for _, k := range keys {
		if !empty {
			buf.WriteByte(',')
		}
		empty = false

		kb, err := encodeNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
