package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/codelive/server/internal/store"
)

const defaultCheckTimeout = 3 * time.Second

// SolutionSource is the read-only view of the content store the hub uses
// for solution checks. May be nil, in which case checks are skipped.
type SolutionSource interface {
	GetCodeBlock(ctx context.Context, id string) (*store.CodeBlock, error)
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

type checkResult struct {
	client *Client
	room   string
}

// Hub owns the room table and processes all session events on a single
// goroutine. A client belongs to at most one room at a time; mutual
// exclusion comes from the event loop, not from locks.
type Hub struct {
	blocks SolutionSource
	log    zerolog.Logger

	// CheckTimeout bounds a single solution lookup. Set before Run.
	CheckTimeout time.Duration

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	checks     chan checkResult
	done       chan struct{}

	rooms   map[string]*Room
	members map[*Client]string
	clients map[*Client]struct{}
}

// NewHub creates a new hub. Both arguments may be nil in tests.
func NewHub(blocks SolutionSource, logger *zerolog.Logger) *Hub {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Hub{
		blocks:       blocks,
		log:          l,
		CheckTimeout: defaultCheckTimeout,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		commands:     make(chan clientCommand),
		checks:       make(chan checkResult, 16),
		done:         make(chan struct{}),
		rooms:        make(map[string]*Room),
		members:      make(map[*Client]string),
		clients:      make(map[*Client]struct{}),
	}
}

// RegisterClient hands a connected client to the hub. No-op after the hub
// has stopped.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// UnregisterClient notifies the hub that a client disconnected. Safe to call
// more than once for the same client, and a no-op after the hub has stopped.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run processes events until the context is cancelled. All room table
// mutations happen here.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			go h.pump(ctx, c)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				// Stop the client's pump; its commands are no longer wanted.
				close(c.done)
			}
			h.removeFromRoom(c)
		case cc := <-h.commands:
			h.handleCommand(ctx, cc.client, cc.cmd)
		case res := <-h.checks:
			h.handleCheckResult(res)
		}
	}
}

// pump forwards one client's commands into the hub loop, preserving
// per-connection order. It exits when the client is unregistered or the hub
// stops.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	if _, ok := h.clients[c]; !ok {
		// Late command from a client that already disconnected.
		return
	}
	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(c, cmd.Room)
	case CommandCodeUpdate:
		h.handleCodeUpdate(ctx, c, cmd.Room, cmd.Code)
	case CommandChatMessage:
		h.handleChat(c, cmd.Room, cmd.Chat)
	case CommandLeaveRoom:
		h.removeFromRoom(c)
	}
}

func (h *Hub) handleJoin(c *Client, key string) {
	if key == "" {
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "room is required")})
		return
	}

	if current, ok := h.members[c]; ok {
		if current == key {
			// Idempotent re-join: membership and role are unchanged.
			h.log.Debug().Str("client_id", c.ID).Str("room", key).Msg("re-join ignored")
			return
		}
		h.send(c, &Event{Kind: EventError, Room: key,
			Error: coreError(ErrCodeAlreadyInRoom, "already joined room "+current)})
		return
	}

	room := h.ensureRoom(key)
	role := RoleStudent
	if room.Mentor() == nil {
		role = RoleMentor
	}
	room.Add(c, role)
	h.members[c] = key

	h.log.Info().Str("client_id", c.ID).Str("room", key).Str("role", string(role)).Msg("client joined room")

	h.send(c, &Event{Kind: EventRoleAssigned, Room: key, Role: role})
	room.Broadcast(&Event{Kind: EventStudentCount, Room: key, Count: room.StudentCount()})
}

func (h *Hub) handleCodeUpdate(ctx context.Context, c *Client, key, code string) {
	room := h.memberRoom(c, key)
	if room == nil {
		h.send(c, &Event{Kind: EventError, Room: key,
			Error: coreError(ErrCodeNotInRoom, "not a member of room "+key)})
		return
	}

	room.Broadcast(&Event{Kind: EventCodeUpdate, Room: key, Code: code}, c)

	if h.blocks != nil {
		go h.checkSolution(ctx, c, key, code)
	}
}

func (h *Hub) handleChat(c *Client, key string, msg ChatMessage) {
	room := h.memberRoom(c, key)
	if room == nil {
		h.log.Debug().Str("client_id", c.ID).Str("room", key).Msg("chat from non-member dropped")
		return
	}
	room.Broadcast(&Event{Kind: EventChatMessage, Room: key, Chat: msg}, c)
}

// checkSolution compares code against the stored solution off the hub
// goroutine, so a slow store never stalls other rooms. Only a positive match
// is reported back.
func (h *Hub) checkSolution(ctx context.Context, c *Client, key, code string) {
	lookupCtx, cancel := context.WithTimeout(ctx, h.CheckTimeout)
	defer cancel()

	block, err := h.blocks.GetCodeBlock(lookupCtx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.log.Debug().Str("room", key).Msg("no code block backing room, skipping solution check")
		} else {
			h.log.Warn().Err(err).Str("room", key).Msg("solution lookup failed")
		}
		return
	}

	if strings.TrimSpace(code) != strings.TrimSpace(block.Solution) {
		return
	}

	select {
	case h.checks <- checkResult{client: c, room: key}:
	case <-ctx.Done():
	}
}

// handleCheckResult delivers a solution match if the sender is still a member
// of the room. A result that outlived its room is discarded.
func (h *Hub) handleCheckResult(res checkResult) {
	if h.members[res.client] != res.room {
		h.log.Debug().Str("client_id", res.client.ID).Str("room", res.room).Msg("stale solution match discarded")
		return
	}
	h.send(res.client, &Event{Kind: EventSolutionMatched, Room: res.room, Matched: true})
	h.log.Info().Str("client_id", res.client.ID).Str("room", res.room).Msg("solution matched")
}

// removeFromRoom takes a client out of its room, applying the mentor
// teardown policy. No-op if the client is not in any room.
func (h *Hub) removeFromRoom(c *Client) {
	key, ok := h.members[c]
	if !ok {
		return
	}
	delete(h.members, c)

	room := h.rooms[key]
	if room == nil {
		return
	}
	role, _ := room.Role(c)
	room.Remove(c)

	h.log.Info().Str("client_id", c.ID).Str("room", key).Str("role", string(role)).Msg("client left room")

	if role == RoleMentor {
		// Mentor departure tears the room down: everyone is sent back to
		// the lobby and the room state is dropped.
		room.Broadcast(&Event{Kind: EventRedirectLobby, Room: key})
		for _, m := range room.Members() {
			delete(h.members, m)
		}
		delete(h.rooms, key)
		h.log.Info().Str("room", key).Msg("room torn down after mentor departure")
		return
	}

	room.Broadcast(&Event{Kind: EventStudentCount, Room: key, Count: room.StudentCount()})
	h.destroyIfEmpty(key)
}

// memberRoom returns the room if c is a member of it under the given key.
func (h *Hub) memberRoom(c *Client, key string) *Room {
	if h.members[c] != key {
		return nil
	}
	return h.rooms[key]
}

// ensureRoom returns the room for key, creating it if absent.
func (h *Hub) ensureRoom(key string) *Room {
	room, ok := h.rooms[key]
	if !ok {
		room = NewRoom(key)
		h.rooms[key] = room
		h.log.Debug().Str("room", key).Msg("room created")
	}
	return room
}

// destroyIfEmpty garbage-collects an empty room.
func (h *Hub) destroyIfEmpty(key string) {
	if room, ok := h.rooms[key]; ok && room.Empty() {
		delete(h.rooms, key)
		h.log.Debug().Str("room", key).Msg("empty room removed")
	}
}

// send unicasts an event, dropping it if the client's channel is full.
func (h *Hub) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
	}
}
