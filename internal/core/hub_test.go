package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/codelive/server/internal/store"
)

func startHub(t *testing.T, blocks SolutionSource) *Hub {
	t.Helper()

	hub := NewHub(blocks, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestJoinAssignsMentorThenStudents(t *testing.T) {
	hub := startHub(t, nil)

	alice := NewClient("a")
	bob := NewClient("b")
	carol := NewClient("c")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	hub.RegisterClient(carol)

	if role := join(t, alice, "room1"); role != RoleMentor {
		t.Fatalf("first joiner should be mentor, got %s", role)
	}
	if role := join(t, bob, "room1"); role != RoleStudent {
		t.Fatalf("second joiner should be student, got %s", role)
	}
	if role := join(t, carol, "room1"); role != RoleStudent {
		t.Fatalf("third joiner should be student, got %s", role)
	}

	// The mentor sees the student count grow with each join.
	for i, want := range []int{0, 1, 2} {
		ev := mustEvent(t, alice.Events, EventStudentCount)
		if ev.Count != want {
			t.Fatalf("count broadcast %d: want %d, got %d", i, want, ev.Count)
		}
	}
}

func TestRejoinSameRoomIsIdempotent(t *testing.T) {
	hub := startHub(t, nil)

	alice := NewClient("a")
	hub.RegisterClient(alice)
	join(t, alice, "room1")
	mustEvent(t, alice.Events, EventStudentCount)

	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "room1"}

	mustNoEvent(t, alice.Events, EventRoleAssigned)
	mustNoEvent(t, alice.Events, EventStudentCount)
}

func TestJoinSecondRoomRejected(t *testing.T) {
	hub := startHub(t, nil)

	alice := NewClient("a")
	hub.RegisterClient(alice)
	join(t, alice, "room1")

	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "room2"}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeAlreadyInRoom {
		t.Fatalf("expected already_in_room error, got %+v", ev)
	}
}

func TestJoinEmptyRoomKeyRejected(t *testing.T) {
	hub := startHub(t, nil)

	alice := NewClient("a")
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: ""}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeBadRequest {
		t.Fatalf("expected bad_request error, got %+v", ev)
	}
}

func TestCodeUpdateRelaysToPeersOnly(t *testing.T) {
	hub := startHub(t, nil)

	alice := NewClient("a")
	bob := NewClient("b")
	carol := NewClient("c")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	hub.RegisterClient(carol)
	join(t, alice, "room1")
	join(t, bob, "room1")
	join(t, carol, "room1")

	bob.Commands <- &Command{Kind: CommandCodeUpdate, Room: "room1", Code: "let x = 1;"}

	for _, peer := range []*Client{alice, carol} {
		ev := mustEvent(t, peer.Events, EventCodeUpdate)
		if ev.Code != "let x = 1;" {
			t.Fatalf("unexpected code payload: %+v", ev)
		}
	}
	mustNoEvent(t, bob.Events, EventCodeUpdate)
}

func TestCodeUpdateFromNonMemberRejected(t *testing.T) {
	hub := startHub(t, nil)

	alice := NewClient("a")
	mallory := NewClient("m")
	hub.RegisterClient(alice)
	hub.RegisterClient(mallory)
	join(t, alice, "room1")

	mallory.Commands <- &Command{Kind: CommandCodeUpdate, Room: "room1", Code: "evil"}

	ev := mustEvent(t, mallory.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room error, got %+v", ev)
	}
	mustNoEvent(t, alice.Events, EventCodeUpdate)
}

func TestChatRelaysToPeersOnly(t *testing.T) {
	hub := startHub(t, nil)

	alice := NewClient("a")
	bob := NewClient("b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	join(t, alice, "room1")
	join(t, bob, "room1")

	bob.Commands <- &Command{
		Kind: CommandChatMessage,
		Room: "room1",
		Chat: ChatMessage{Sender: "student", Text: "stuck on line 3"},
	}

	ev := mustEvent(t, alice.Events, EventChatMessage)
	if ev.Chat.Sender != "student" || ev.Chat.Text != "stuck on line 3" {
		t.Fatalf("unexpected chat event: %+v", ev)
	}
	mustNoEvent(t, bob.Events, EventChatMessage)
}

func TestSolutionMatchTrimsWhitespace(t *testing.T) {
	blocks := &stubBlocks{blocks: map[string]*store.CodeBlock{
		"room1": {ID: "room1", Solution: "return a+b;"},
	}}
	hub := startHub(t, blocks)

	alice := NewClient("a")
	bob := NewClient("b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	join(t, alice, "room1")
	join(t, bob, "room1")

	bob.Commands <- &Command{Kind: CommandCodeUpdate, Room: "room1", Code: "  return a+b;  "}

	ev := mustEvent(t, bob.Events, EventSolutionMatched)
	if !ev.Matched {
		t.Fatalf("expected matched=true, got %+v", ev)
	}
	// Only the sender is notified.
	mustNoEvent(t, alice.Events, EventSolutionMatched)

	bob.Commands <- &Command{Kind: CommandCodeUpdate, Room: "room1", Code: "return a+b;x"}
	mustNoEvent(t, bob.Events, EventSolutionMatched)
}

func TestSolutionLookupFailureDoesNotBlockRelay(t *testing.T) {
	blocks := &stubBlocks{err: errors.New("store down")}
	hub := startHub(t, blocks)

	alice := NewClient("a")
	bob := NewClient("b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	join(t, alice, "room1")
	join(t, bob, "room1")

	bob.Commands <- &Command{Kind: CommandCodeUpdate, Room: "room1", Code: "anything"}

	ev := mustEvent(t, alice.Events, EventCodeUpdate)
	if ev.Code != "anything" {
		t.Fatalf("relay should survive lookup failure, got %+v", ev)
	}
	mustNoEvent(t, bob.Events, EventSolutionMatched)
}

func TestStaleSolutionResultDiscarded(t *testing.T) {
	gate := make(chan struct{})
	blocks := &stubBlocks{
		blocks: map[string]*store.CodeBlock{"room1": {ID: "room1", Solution: "done"}},
		gate:   gate,
	}
	hub := startHub(t, blocks)

	mentor := NewClient("m")
	student := NewClient("s")
	hub.RegisterClient(mentor)
	hub.RegisterClient(student)
	join(t, mentor, "room1")
	join(t, student, "room1")

	// The lookup is held at the gate while the room is torn down underneath it.
	student.Commands <- &Command{Kind: CommandCodeUpdate, Room: "room1", Code: "done"}
	mustEvent(t, mentor.Events, EventCodeUpdate)

	hub.UnregisterClient(mentor)
	mustEvent(t, student.Events, EventRedirectLobby)

	close(gate)

	mustNoEvent(t, student.Events, EventSolutionMatched)
}

func TestMentorDisconnectTearsDownRoom(t *testing.T) {
	hub := startHub(t, nil)

	mentor := NewClient("m")
	bob := NewClient("b")
	carol := NewClient("c")
	hub.RegisterClient(mentor)
	hub.RegisterClient(bob)
	hub.RegisterClient(carol)
	join(t, mentor, "room1")
	join(t, bob, "room1")
	join(t, carol, "room1")

	hub.UnregisterClient(mentor)

	mustEvent(t, bob.Events, EventRedirectLobby)
	mustEvent(t, carol.Events, EventRedirectLobby)

	// The room is gone: re-joining the same key starts a fresh room, so the
	// first joiner becomes mentor again.
	if role := join(t, bob, "room1"); role != RoleMentor {
		t.Fatalf("re-join after teardown should assign mentor, got %s", role)
	}
}

func TestStudentDisconnectUpdatesCount(t *testing.T) {
	hub := startHub(t, nil)

	mentor := NewClient("m")
	bob := NewClient("b")
	carol := NewClient("c")
	hub.RegisterClient(mentor)
	hub.RegisterClient(bob)
	hub.RegisterClient(carol)
	join(t, mentor, "room1")
	join(t, bob, "room1")
	join(t, carol, "room1")

	hub.UnregisterClient(carol)

	for i, want := range []int{0, 1, 2, 1} {
		ev := mustEvent(t, mentor.Events, EventStudentCount)
		if ev.Count != want {
			t.Fatalf("count broadcast %d: want %d, got %d", i, want, ev.Count)
		}
	}
	mustNoEvent(t, mentor.Events, EventRedirectLobby)
}

func TestDuplicateDisconnectIsNoop(t *testing.T) {
	hub := startHub(t, nil)

	mentor := NewClient("m")
	bob := NewClient("b")
	hub.RegisterClient(mentor)
	hub.RegisterClient(bob)
	join(t, mentor, "room1")
	join(t, bob, "room1")

	hub.UnregisterClient(bob)
	mustEvent(t, mentor.Events, EventStudentCount) // count 0 from first join
	hub.UnregisterClient(bob)

	// Only the joins and the single departure produce count updates.
	mustEvent(t, mentor.Events, EventStudentCount)
	mustEvent(t, mentor.Events, EventStudentCount)
	mustNoEvent(t, mentor.Events, EventStudentCount)
}

func TestUnregisterStopsClientPump(t *testing.T) {
	hub := startHub(t, nil)

	before := runtime.NumGoroutine()

	for i := 0; i < 200; i++ {
		c := NewClient(fmt.Sprintf("churn-%d", i))
		hub.RegisterClient(c)
		join(t, c, "churn")
		hub.UnregisterClient(c)
	}

	// Each unregister must also stop the client's pump goroutine, so the
	// count settles back near where it started.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= before+5 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("goroutines grew from %d to %d after connection churn", before, runtime.NumGoroutine())
}

func TestUnregisterAfterShutdownDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	alice := NewClient("a")
	hub.RegisterClient(alice)

	cancel()

	unblocked := make(chan struct{})
	go func() {
		hub.UnregisterClient(alice)
		hub.RegisterClient(NewClient("b"))
		close(unblocked)
	}()

	select {
	case <-unblocked:
	case <-time.After(2 * time.Second):
		t.Fatal("register/unregister blocked after hub shutdown")
	}
}

func TestLeaveFreesRoomForNextMentor(t *testing.T) {
	hub := startHub(t, nil)

	alice := NewClient("a")
	bob := NewClient("b")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	join(t, alice, "room1")
	alice.Commands <- &Command{Kind: CommandLeaveRoom, Room: "room1"}

	// The empty room was garbage-collected, so bob starts it fresh. A stale
	// room would still list alice as mentor and demote bob to student.
	if role := join(t, bob, "room1"); role != RoleMentor {
		t.Fatalf("expected mentor in recreated room, got %s", role)
	}
}

func TestStudentLeaveKeepsRoomAlive(t *testing.T) {
	hub := startHub(t, nil)

	mentor := NewClient("m")
	bob := NewClient("b")
	hub.RegisterClient(mentor)
	hub.RegisterClient(bob)
	join(t, mentor, "room1")
	join(t, bob, "room1")

	bob.Commands <- &Command{Kind: CommandLeaveRoom, Room: "room1"}

	mustNoEvent(t, mentor.Events, EventRedirectLobby)

	// Bob can come back as a student; the mentor seat is still taken.
	if role := join(t, bob, "room1"); role != RoleStudent {
		t.Fatalf("expected student on re-join, got %s", role)
	}
}
