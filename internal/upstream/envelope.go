package upstream

import (
	"bytes"
	"encoding/json"
)

// The garment API does not answer with a uniform envelope. Observed
// variants for list endpoints:
//
//	[...]
//	{"data": [...]}
//	{"data": {"listData": [...]}}
//	{"listData": [...]}
//
// ExtractList probes those shapes in that order and returns the first
// array found. Anything else normalizes to an empty list rather than an
// error, so an unrecognized payload degrades to "no rows" instead of
// failing the whole page.
func ExtractList(raw json.RawMessage) json.RawMessage {
	if arr, ok := asArray(raw); ok {
		return arr
	}

	var outer struct {
		Data     json.RawMessage `json:"data"`
		ListData json.RawMessage `json:"listData"`
	}
	if err := json.Unmarshal(raw, &outer); err != nil {
		return emptyList
	}

	if arr, ok := asArray(outer.Data); ok {
		return arr
	}
	if len(outer.Data) > 0 {
		var inner struct {
			ListData json.RawMessage `json:"listData"`
		}
		if err := json.Unmarshal(outer.Data, &inner); err == nil {
			if arr, ok := asArray(inner.ListData); ok {
				return arr
			}
		}
	}
	if arr, ok := asArray(outer.ListData); ok {
		return arr
	}
	return emptyList
}

var emptyList = json.RawMessage("[]")

func asArray(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return trimmed, true
	}
	return nil, false
}

// DecodeList normalizes raw into a list and unmarshals it into []T.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	var out []T
	if err := json.Unmarshal(ExtractList(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeRecord unwraps the {"data": {...}} envelope used by detail
// endpoints, falling back to the root object when absent.
func DecodeRecord[T any](raw json.RawMessage) (*T, error) {
	var outer struct {
		Data json.RawMessage `json:"data"`
	}
	body := raw
	if err := json.Unmarshal(raw, &outer); err == nil && len(outer.Data) > 0 && !bytes.Equal(outer.Data, []byte("null")) {
		// Detail endpoints sometimes double-wrap: {"data":{"data":{...}}}.
		var inner struct {
			Data json.RawMessage `json:"data"`
		}
		body = outer.Data
		if err := json.Unmarshal(outer.Data, &inner); err == nil && len(inner.Data) > 0 && !bytes.Equal(inner.Data, []byte("null")) {
			body = inner.Data
		}
	}
	var rec T
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
