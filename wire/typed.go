// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"strconv"

	json "github.com/segmentio/encoding/json"
)

// Typed-value prefixes. A PATCH payload carries a single scalar that must
// round-trip its JSON type across the wire; these one-byte prefixes let
// the receiver distinguish "the string \"3\"" from "the number 3" without
// a full JSON envelope around every field.
const (
	prefixString = 'S'
	prefixObject = 'O'
	prefixNumber = 'N'
	prefixTrue   = 'T'
	prefixFalse  = 'F'
	prefixNull   = 'L'
	prefixUndef  = 'U'
)

// ConvertTyped encodes an arbitrary JSON-compatible Go value as a typed
// string, the inverse of ParseTyped.
func ConvertTyped(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return string(prefixNull), nil
	case string:
		return string(prefixString) + v, nil
	case bool:
		if v {
			return string(prefixTrue), nil
		}
		return string(prefixFalse), nil
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return string(prefixNumber) + fmt.Sprint(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("wire: encode typed value: %w", err)
		}
		return string(prefixObject) + string(data), nil
	}
}

// ParseTyped decodes a typed string produced by ConvertTyped (or received
// from the server) back into a Go value.
func ParseTyped(raw string) (any, error) {
	if raw == "" {
		return nil, fmt.Errorf("wire: empty typed value")
	}
	prefix, body := raw[0], raw[1:]
	switch prefix {
	case prefixString:
		return body, nil
	case prefixObject:
		var v any
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return nil, fmt.Errorf("wire: decode typed object: %w", err)
		}
		return v, nil
	case prefixNumber:
		n, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, fmt.Errorf("wire: decode typed number: %w", err)
		}
		return n, nil
	case prefixTrue:
		return true, nil
	case prefixFalse:
		return false, nil
	case prefixNull, prefixUndef:
		return nil, nil
	default:
		return nil, fmt.Errorf("wire: unknown typed-value prefix %q", prefix)
	}
}
