// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package record

import "strconv"

// snapshot is what beginChangeLocked captures for one subscribed path:
// its value immediately before the mutation, so completeChangeLocked
// can tell whether it actually changed.
type snapshot struct {
	path   string
	before any
}

// beginChangeLocked implements step 1 of the path change notification
// algorithm: snapshot the pre-mutation value of every currently-subscribed
// path (root included, under rootPath). Must be called with mu held.
func (r *Record) beginChangeLocked() []snapshot {
	snaps := make([]snapshot, 0, len(r.pathSubs))
	for path := range r.pathSubs {
		v, _ := r.getLocked(path)
		snaps = append(snaps, snapshot{path: path, before: v})
	}
	return snaps
}

// completeChangeLocked implements step 3: for each snapshotted path,
// compare its pre-mutation value against the post-mutation value and
// emit to that path's subscribers iff it changed. A single mutation
// therefore triggers at most one notification per affected path. Must
// be called with mu held, after the mutation itself has already been
// applied to r.data.
func (r *Record) completeChangeLocked(snaps []snapshot) {
	for _, s := range snaps {
		after, _ := r.getLocked(s.path)
		if deepEqual(s.before, after) {
			continue
		}
		for _, sub := range r.pathSubs[s.path] {
			cb, value := sub.cb, deepClone(after)
			r.busEffects = append(r.busEffects, func() { cb(value) })
		}
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
