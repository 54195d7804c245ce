// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package wire

import "strings"

// Wire-level separators. A single Decode call may receive several
// messages batched into one socket frame; messagePartSeparator splits a
// message's own fields, messageSeparator splits the batch into messages.
const (
	messagePartSeparator = "\x1f"
	messageSeparator     = "\x1e"
)

// Encode serialises one or more messages into a single wire frame. It
// never fails: a Message with an empty Topic/Action is simply skipped,
// since Encode has no channel to report an error back through and the
// caller controls what Messages it builds.
func Encode(msgs ...Message) []byte {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if !m.Valid() {
			continue
		}
		fields := []string{string(m.Topic), string(m.Action)}
		// Name is positional (decodeOne always reads the first field
		// after Action as Name), so it must be emitted even when empty
		// whenever Data follows it, or Data[0] would be misread as Name.
		if m.Name != "" || len(m.Data) > 0 {
			fields = append(fields, m.Name)
		}
		fields = append(fields, m.Data...)
		parts = append(parts, strings.Join(fields, messagePartSeparator))
	}
	return []byte(strings.Join(parts, messageSeparator))
}

// Decode parses a raw wire frame into zero or more Messages. Decode
// never returns an error: per §4.A, a malformed frame yields a
// CONNECTION/PARSE_ERROR message in the returned slice instead, so a
// single corrupt frame in a batch does not prevent the well-formed
// messages around it from being dispatched.
func Decode(raw []byte) []Message {
	text := string(raw)
	if text == "" {
		return nil
	}
	chunks := strings.Split(text, messageSeparator)
	msgs := make([]Message, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == "" {
			continue
		}
		msg, err := decodeOne(chunk)
		if err != nil {
			msgs = append(msgs, ParseErrorMessage(err, chunk))
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func decodeOne(chunk string) (Message, error) {
	fields := strings.Split(chunk, messagePartSeparator)
	if len(fields) < 2 {
		return Message{}, errMalformed(chunk)
	}
	m := Message{
		Topic:  Topic(fields[0]),
		Action: Action(fields[1]),
	}
	if !m.Valid() {
		return Message{}, errMalformed(chunk)
	}
	rest := fields[2:]
	if len(rest) > 0 {
		m.Name = rest[0]
		m.Data = rest[1:]
	}
	return m, nil
}

type malformedFrameError struct{ chunk string }

func (e *malformedFrameError) Error() string {
	return "wire: malformed frame: " + e.chunk
}

func errMalformed(chunk string) error { return &malformedFrameError{chunk: chunk} }
