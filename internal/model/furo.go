package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FuroEntry is one exposed meld as carried in a snapshot: the server's string
// key plus the constituent tiles.
type FuroEntry struct {
	Key   string
	Tiles []Tile
}

// FuroList preserves the wire order of a snapshot's furo object. Entries pair
// positionally with kui_info, so plain map decoding would scramble them.
type FuroList []FuroEntry

// UnmarshalJSON decodes the furo object key by key, keeping arrival order.
func (f *FuroList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("furo: expected object, got %v", tok)
	}

	out := FuroList{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("furo: expected string key, got %v", keyTok)
		}
		var tiles []Tile
		if err := dec.Decode(&tiles); err != nil {
			return err
		}
		out = append(out, FuroEntry{Key: key, Tiles: tiles})
	}
	*f = out
	return nil
}

// KeyInts extracts the integer components of the entry's key. Keys arrive as
// stringified tuples like "(0, 12, 0)"; only the digit runs matter.
func (e FuroEntry) KeyInts() []int {
	var out []int
	n, in := 0, false
	for _, r := range e.Key {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			in = true
			continue
		}
		if in {
			out = append(out, n)
			n, in = 0, false
		}
	}
	if in {
		out = append(out, n)
	}
	return out
}
