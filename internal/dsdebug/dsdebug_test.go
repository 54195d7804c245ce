// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dsdebug

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Success(t *testing.T) {
	tests := []struct {
		name   string
		envVal string
		want   map[string]string
	}{
		{
			name:   "Basic",
			envVal: "logwire=1,logheartbeat=1",
			want:   map[string]string{"logwire": "1", "logheartbeat": "1"},
		},
		{
			name:   "Empty",
			envVal: "",
			want:   nil,
		},
		{
			name:   "WithWhitespace",
			envVal: "  logwire = 1  \t,  logheartbeat  = 0  ",
			want:   map[string]string{"logwire": "1", "logheartbeat": "0"},
		},
		{
			name:   "WithEqualsSignInValue",
			envVal: "filter=topic=RECORD",
			want:   map[string]string{"filter": "topic=RECORD"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(tt.envVal)
			if err != nil {
				t.Fatalf("parse() failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Failure(t *testing.T) {
	tests := []struct {
		name   string
		envVal string
	}{
		{name: "NoEqualsSign", envVal: "invalidformat"},
		{name: "MixedValidAndInvalid", envVal: "logwire=1,baz"},
		{name: "EmptyPart", envVal: "logwire=1,,logheartbeat=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse(tt.envVal); err == nil {
				t.Error("parse() expected error, got nil")
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	params = map[string]string{"logwire": "1", "logheartbeat": "false"}
	if !Enabled("logwire") {
		t.Error("want logwire enabled")
	}
	if Enabled("logheartbeat") {
		t.Error("want logheartbeat disabled")
	}
	if Enabled("unset") {
		t.Error("want unset key disabled")
	}
}
