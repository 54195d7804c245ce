// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"fmt"

	"github.com/yosida95/uritemplate/v3"
)

// ResolveURL expands a RFC 6570 URL template (e.g.
// "wss://{host}/{+authToken}") against params, for deployments that fold
// per-connection routing or credentials into the URL the socket dials.
// A plain URL with no template expressions round-trips unchanged.
func ResolveURL(template string, params map[string]string) (string, error) {
	tmpl, err := uritemplate.New(template)
	if err != nil {
		return "", fmt.Errorf("transport: parse url template: %w", err)
	}
	values := uritemplate.Values{}
	for k, v := range params {
		values.Set(k, uritemplate.String(v))
	}
	return tmpl.Expand(values)
}
