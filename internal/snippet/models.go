package snippet

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Item is one reusable text chip. The short "t" key is the on-disk format;
// older files may hold bare strings instead of objects, which Decode accepts
// and normalizes away on the next save.
type Item struct {
	Text string `json:"t"`
	Hint string `json:"hint,omitempty"`
}

// FileName is the single collection object inside the snippet folder.
const FileName = "snippets.json"

// Normalize coerces the two accepted input shapes into the canonical one.
// An empty hint is dropped, never stored as "".
func Normalize(raw json.RawMessage) (Item, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Item{Text: s}, true
	}
	var obj struct {
		Text string `json:"t"`
		Hint string `json:"hint"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return Item{Text: obj.Text, Hint: obj.Hint}, true
	}
	return Item{}, false
}

// Decode reads the collection object. Anything that is not a JSON array
// (missing, corrupt, wrong shape) decodes as the empty collection so the
// next save starts fresh.
func Decode(data []byte) []Item {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return []Item{}
	}
	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		if it, ok := Normalize(r); ok {
			items = append(items, it)
		}
	}
	return items
}

// Encode serializes the collection deterministically: stable key order,
// indented UTF-8, no HTML escaping of user text.
func Encode(items []Item) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SplitInput parses the "hint:text" registration shorthand. Without a colon
// the whole input is the text and the hint stays empty.
func SplitInput(raw string) (text, hint string) {
	raw = strings.TrimRight(raw, " \t\r\n")
	if i := strings.Index(raw, ":"); i >= 0 {
		hint = strings.TrimSpace(raw[:i])
		text = strings.TrimSpace(raw[i+1:])
		return text, hint
	}
	return raw, ""
}
