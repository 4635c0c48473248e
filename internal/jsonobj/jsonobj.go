// Package jsonobj reads JSON objects without losing member order.
package jsonobj

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Field is one member of a JSON object.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Fields returns the members of a JSON object in document order. A repeated
// key keeps the position of its first occurrence and the value of its last,
// which is what decoding into a map would keep. Empty input and null yield
// no fields.
func Fields(data []byte) ([]Field, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, errors.New("invalid JSON")
	}

	res := gjson.ParseBytes(trimmed)
	if res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("expected object, got %s", res.Type)
	}

	out := []Field{}
	index := make(map[string]int)
	res.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		raw := json.RawMessage(value.Raw)
		if i, ok := index[k]; ok {
			out[i].Value = raw
			return true
		}
		index[k] = len(out)
		out = append(out, Field{Key: k, Value: raw})
		return true
	})
	return out, nil
}
