package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoleAssigned tells a client which role it holds in a room.
	EventRoleAssigned EventKind = iota
	// EventStudentCount notifies a room about its current student count.
	EventStudentCount
	// EventCodeUpdate delivers an editor change made by a room peer.
	EventCodeUpdate
	// EventSolutionMatched tells a client its code equals the stored solution.
	EventSolutionMatched
	// EventChatMessage delivers a chat line from a room peer.
	EventChatMessage
	// EventRedirectLobby instructs clients to leave the room and return to the lobby.
	EventRedirectLobby
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Room    string
	Role    Role
	Count   int
	Code    string
	Matched bool
	Chat    ChatMessage
	Error   *CoreError
}
