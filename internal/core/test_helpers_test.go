package core

import (
	"context"
	"testing"
	"time"

	"github.com/codelive/server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent asserts that no event of the given kind arrives within a short
// window. Events of other kinds are discarded.
func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// stubBlocks is an in-memory SolutionSource. If gate is non-nil, lookups
// block until it is closed.
type stubBlocks struct {
	blocks map[string]*store.CodeBlock
	err    error
	gate   chan struct{}
}

func (s *stubBlocks) GetCodeBlock(ctx context.Context, id string) (*store.CodeBlock, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	block, ok := s.blocks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return block, nil
}

// join sends a join command and waits for the role assignment, so joins from
// different clients are processed in a deterministic order.
func join(t *testing.T, c *Client, room string) Role {
	t.Helper()

	c.Commands <- &Command{Kind: CommandJoinRoom, Room: room}
	ev := mustEvent(t, c.Events, EventRoleAssigned)
	if ev.Room != room {
		t.Fatalf("role assigned for wrong room: %+v", ev)
	}
	return ev.Role
}
