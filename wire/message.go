// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the message codec for the realtime protocol:
// the decoded {topic, action, data} envelope shared by the connection
// core and the record engine, and the typed-scalar encoding used inside
// record payloads.
package wire

import "fmt"

// Topic identifies the subsystem a Message belongs to.
type Topic string

const (
	TopicConnection Topic = "C"
	TopicAuth       Topic = "A"
	TopicEvent      Topic = "E"
	TopicRecord     Topic = "R"
	TopicRPC        Topic = "P"
	TopicPresence   Topic = "U"
)

// Action identifies the operation within a Topic. The same string may be
// reused across topics (e.g. "A" is both CONNECTION ACCEPT and AUTH
// AUTH_SUCCESSFUL); Topic+Action together are what the
// connection core dispatches on.
type Action string

const (
	ActionChallenge         Action = "CH"
	ActionChallengeResponse Action = "CHR"
	ActionAccept            Action = "A"
	ActionReject            Action = "REJ"
	ActionRedirect          Action = "RED"
	ActionPing              Action = "PI"
	ActionPong              Action = "PO"
	ActionClosing           Action = "CLS"
	ActionError             Action = "E"

	ActionAuthRequest           Action = "REQ"
	ActionAuthSuccessful        Action = "A"
	ActionAuthUnsuccessful      Action = "E"
	ActionTooManyAuthAttempts   Action = "TMA"
	ActionInvalidAuthMessage    Action = "IMD"

	ActionCreateOrRead Action = "CR"
	ActionRead         Action = "R"
	ActionUpdate       Action = "U"
	ActionPatch        Action = "P"
	ActionAck          Action = "AK"
	ActionDelete       Action = "D"
	ActionUnsubscribe  Action = "US"

	// ActionParseError is synthesized locally by Decode; it never appears
	// on the wire. The connection core treats it like any other message
	// so malformed frames never escape as a panic or an error return.
	ActionParseError Action = "PE"
)

// Message is the decoded form of a single protocol frame. Data carries
// the raw (still scalar-typed) string fields; ParsedData is populated by
// callers that need a decoded Go value (e.g. the challenge response or
// redirect URL, or the cause of a locally synthesized parse error).
type Message struct {
	Topic      Topic
	Action     Action
	Name       string
	Data       []string
	ParsedData any
}

// Valid reports whether the Message carries a non-empty Topic and
// Action. The data model in the spec treats (topic, action) as a
// mandatory pair; a zero-value Message is never dispatchable.
func (m Message) Valid() bool {
	return m.Topic != "" && m.Action != ""
}

func (m Message) String() string {
	return fmt.Sprintf("%s|%s|%s|%v", m.Topic, m.Action, m.Name, m.Data)
}

// ParseErrorMessage builds the local CONNECTION/PARSE_ERROR message the
// codec yields in place of returning an error to its caller; see
// Decode's doc comment.
func ParseErrorMessage(cause error, raw string) Message {
	return Message{
		Topic:      TopicConnection,
		Action:     ActionParseError,
		Data:       []string{raw},
		ParsedData: cause,
	}
}
