// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dsdebug provides a mechanism to configure diagnostic
// knobs via the DSCLIENT_DEBUG environment variable.
//
// The value of DSCLIENT_DEBUG is a comma-separated list of key=value
// pairs. For example:
//
//	DSCLIENT_DEBUG=logwire=1,logheartbeat=1
package dsdebug

import (
	"fmt"
	"os"
	"strings"
)

const envKey = "DSCLIENT_DEBUG"

var params map[string]string

func init() {
	var err error
	params, err = parse(os.Getenv(envKey))
	if err != nil {
		panic(err)
	}
}

// Value returns the value of the debug option with the given key. It
// returns an empty string if the key is not set.
func Value(key string) string {
	return params[key]
}

// Enabled reports whether key is set to a truthy value ("1", "true",
// or "yes", case-insensitively). It is shorthand for the common case
// of a boolean debug flag, e.g. "logwire".
func Enabled(key string) bool {
	switch strings.ToLower(params[key]) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func parse(envValue string) (map[string]string, error) {
	if envValue == "" {
		return nil, nil
	}

	out := make(map[string]string)
	for _, part := range strings.Split(envValue, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%s: invalid format: %q", envKey, part)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
