package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MenuItem is a single dish within a cafe section.
type MenuItem struct {
	Label     string `json:"label"`
	Icon      string `json:"icon,omitempty"`
	IconCodes []int  `json:"iconvalue,omitempty"`
}

// HasIconCode reports whether the item carries any of the given codes.
func (m MenuItem) HasIconCode(codes []int) bool {
	for _, want := range codes {
		for _, have := range m.IconCodes {
			if have == want {
				return true
			}
		}
	}
	return false
}

// CafeSection is one cafe's ordered list of items.
type CafeSection struct {
	Cafe  string
	Items []MenuItem
}

// Menu is the structured menu payload for one (date, meal) pair. Sections
// keep the order they appear in on the wire, since responses are composed
// in encountered order.
type Menu struct {
	Sections []CafeSection
}

// UnmarshalJSON decodes the upstream payload, an object keyed by cafe
// name, while preserving key order. encoding/json map decoding would
// lose it.
func (m *Menu) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("menu payload: expected object, got %v", tok)
	}

	m.Sections = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		cafe, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("menu payload: non-string cafe key %v", keyTok)
		}

		var items []MenuItem
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("menu payload: cafe %q: %w", cafe, err)
		}
		m.Sections = append(m.Sections, CafeSection{Cafe: cafe, Items: items})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON renders the menu back as a cafe-keyed object.
func (m Menu) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range m.Sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sec.Cafe)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		items, err := json.Marshal(sec.Items)
		if err != nil {
			return nil, err
		}
		buf.Write(items)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
