package core

// Client is a connected endpoint as seen by the core layer. The transport
// owns the underlying socket; the hub only ever touches the channels.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	// done is closed by the hub when the client is unregistered, stopping
	// its command pump.
	done chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 16),
		Events:   make(chan *Event, 16),
		done:     make(chan struct{}),
	}
}
