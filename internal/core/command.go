package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the client to a room and assigns a role.
	CommandJoinRoom CommandKind = iota
	// CommandCodeUpdate relays an editor change to room peers.
	CommandCodeUpdate
	// CommandChatMessage relays a chat message to room peers.
	CommandChatMessage
	// CommandLeaveRoom removes the client from its room without disconnecting.
	CommandLeaveRoom
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string
	Code string
	Chat ChatMessage
}

// ChatMessage is an in-flight chat line. The hub relays it and forgets it;
// there is no history.
type ChatMessage struct {
	Sender string
	Text   string
}
