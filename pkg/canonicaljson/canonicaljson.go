// Package canonicaljson produces the exact canonical JSON encoding used for
// manifest signing and verification: lexicographically sorted object keys
// at every nesting level, no insignificant whitespace, UTF-8 with non-ASCII
// characters preserved literally, numbers in their shortest round-tripping
// form.
package canonicaljson

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Encode canonicalizes an arbitrary JSON value (already-marshaled bytes)
// into the exact byte sequence the manifest is signed over.
func Encode(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("canonicaljson: invalid JSON input")
	}
	sorted := sortValue(gjson.ParseBytes(raw))
	compact := pretty.Ugly(sorted)
	return compact, nil
}

// EncodeManifest marshals v to JSON and canonicalizes the result. v must be
// marshalable with encoding/json (struct, map, or already a json.RawMessage).
func EncodeManifest(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicaljson: marshal manifest: %w", err)
	}
	return Encode(raw)
}

// sortValue rebuilds result as compact JSON text with object keys emitted
// in sorted order at every level. Arrays and scalars pass through
// structurally unchanged; only their nested objects are re-sorted.
func sortValue(result gjson.Result) []byte {
	switch result.Type {
	case gjson.JSON:
		if result.IsArray() {
			return sortArray(result)
		}
		if result.IsObject() {
			return sortObject(result)
		}
		return []byte(result.Raw)
	default:
		return []byte(result.Raw)
	}
}

func sortObject(result gjson.Result) []byte {
	type kv struct {
		key string
		val []byte
	}
	var items []kv
	result.ForEach(func(key, value gjson.Result) bool {
		items = append(items, kv{key.String(), sortValue(value)})
		return true
	})
	sort.Slice(items, func(i, j int) bool { return items[i].key < items[j].key })

	out := []byte{'{'}
	for i, it := range items {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, encodeString(it.key)...)
		out = append(out, ':')
		out = append(out, it.val...)
	}
	out = append(out, '}')
	return out
}

// encodeString renders s as a JSON string literal without escaping
// non-ASCII runes (matching Python's json.dumps(ensure_ascii=False)) and
// without Go's default  /  HTML-safety escaping.
func encodeString(s string) []byte {
	out := []byte{'"'}
	for _, r := range s {
		switch r {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			if r < 0x20 {
				out = append(out, []byte(fmt.Sprintf(`\u%04x`, r))...)
				continue
			}
			out = append(out, string(r)...)
		}
	}
	out = append(out, '"')
	return out
}

func sortArray(result gjson.Result) []byte {
	out := []byte{'['}
	i := 0
	result.ForEach(func(_, value gjson.Result) bool {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, sortValue(value)...)
		i++
		return true
	})
	out = append(out, ']')
	return out
}
