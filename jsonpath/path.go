// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package jsonpath reads and writes a single value inside an arbitrary
// JSON-shaped Go value (map[string]any / []any / scalars) addressed by a
// dotted/bracketed path string such as "a.b[2].c".
package jsonpath

import (
	"strconv"
	"strings"
)

// Path is a parsed path string, ready to be applied to any number of
// root values.
type Path struct {
	raw      string
	segments []segment
}

type segment struct {
	key     string
	index   int
	isIndex bool
}

// Parse splits path into segments. An empty path parses to a Path with
// no segments, which addresses the root value itself.
func Parse(path string) Path {
	p := Path{raw: path}
	if path == "" {
		return p
	}

	var seg strings.Builder
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		p.segments = append(p.segments, segment{key: seg.String()})
		seg.Reset()
	}

	i := 0
	for i < len(path) {
		c := path[i]
		switch c {
		case '.':
			flush()
			i++
		case '[':
			flush()
			end := strings.IndexByte(path[i:], ']')
			if end == -1 {
				// Unterminated bracket: treat the remainder as a literal key.
				seg.WriteString(path[i:])
				i = len(path)
				flush()
				break
			}
			inner := path[i+1 : i+end]
			if n, err := strconv.Atoi(inner); err == nil {
				p.segments = append(p.segments, segment{index: n, isIndex: true})
			} else {
				p.segments = append(p.segments, segment{key: inner})
			}
			i += end + 1
		default:
			seg.WriteByte(c)
			i++
		}
	}
	flush()
	return p
}

// String returns the original path string.
func (p Path) String() string { return p.raw }

// Empty reports whether the path addresses the root value (no segments).
func (p Path) Empty() bool { return len(p.segments) == 0 }

// GetValue reads the value addressed by p out of root. It returns
// (nil, false) if any intermediate segment is missing, matching a
// "get on a missing path returns undefined" semantics.
func (p Path) GetValue(root any) (any, bool) {
	cur := root
	for _, s := range p.segments {
		if s.isIndex {
			arr, ok := cur.([]any)
			if !ok || s.index < 0 || s.index >= len(arr) {
				return nil, false
			}
			cur = arr[s.index]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, exists := obj[s.key]
		if !exists {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// SetValue writes value at the location addressed by p, materializing
// any missing intermediate maps/slices along the way, and returns the
// (possibly new) root. Numeric segments materialize []any; non-numeric
// segments materialize map[string]any.
func (p Path) SetValue(root any, value any) any {
	if p.Empty() {
		return value
	}
	return setAt(root, p.segments, value)
}

func setAt(container any, segs []segment, value any) any {
	s := segs[0]
	rest := segs[1:]

	if s.isIndex {
		if s.index < 0 {
			// A negative index addresses nothing, the same as GetValue's
			// out-of-range check; leave container untouched rather than
			// panicking on a malformed path.
			return container
		}
		arr, ok := container.([]any)
		if !ok {
			arr = nil
		}
		for len(arr) <= s.index {
			arr = append(arr, nil)
		}
		if len(rest) == 0 {
			arr[s.index] = value
		} else {
			arr[s.index] = setAt(arr[s.index], rest, value)
		}
		return arr
	}

	obj, ok := container.(map[string]any)
	if !ok || obj == nil {
		obj = make(map[string]any)
	}
	if len(rest) == 0 {
		obj[s.key] = value
	} else {
		obj[s.key] = setAt(obj[s.key], rest, value)
	}
	return obj
}
