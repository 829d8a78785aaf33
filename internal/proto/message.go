package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin  = "join-room"
	InboundTypeCode  = "code-update"
	InboundTypeChat  = "chat-message"
	InboundTypeLeave = "leave-room"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventRoleAssigned    = "role-assigned"
	EventStudentCount    = "update-student-count"
	EventReceiveCode     = "receive-code"
	EventSolutionMatched = "solution-matched"
	EventReceiveMessage  = "receive-message"
	EventRedirectLobby   = "redirect-to-lobby"
)

// JoinData requests to join a specific room.
type JoinData struct {
	Room string `json:"room"`
}

// CodeData is an editor change from the client.
type CodeData struct {
	Room string `json:"room"`
	Code string `json:"code"`
}

// ChatData is a chat message from the client.
type ChatData struct {
	Room   string `json:"room"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// RoleAssignedData tells a client which role it was given.
type RoleAssignedData struct {
	Room string `json:"room"`
	Role string `json:"role"`
}

// StudentCountData carries the current student count of a room.
type StudentCountData struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
}

// ReceiveCodeData delivers a peer's editor change.
type ReceiveCodeData struct {
	Room string `json:"room"`
	Code string `json:"code"`
}

// SolutionMatchedData reports a successful solution check.
type SolutionMatchedData struct {
	Room    string `json:"room"`
	Matched bool   `json:"matched"`
}

// ReceiveMessageData delivers a peer's chat message.
type ReceiveMessageData struct {
	Room   string `json:"room"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// RedirectLobbyData instructs the client to return to the lobby.
type RedirectLobbyData struct {
	Room string `json:"room"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
