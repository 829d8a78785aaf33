package core

// Role is the part a participant plays in a room.
type Role string

const (
	// RoleMentor is held by at most one participant per room.
	RoleMentor Role = "mentor"
	// RoleStudent is assigned to every participant after the first.
	RoleStudent Role = "student"
)

type participant struct {
	client *Client
	role   Role
}

// Room groups participants collaborating on one code block. The participant
// slice is ordered by join time.
type Room struct {
	Key          string
	participants []participant
}

// NewRoom constructs a room with no participants.
func NewRoom(key string) *Room {
	return &Room{Key: key}
}

// Add appends a participant. Returns false if the client is already a member.
func (r *Room) Add(c *Client, role Role) bool {
	if r.Has(c) {
		return false
	}
	r.participants = append(r.participants, participant{client: c, role: role})
	return true
}

// Remove deletes a participant, preserving join order of the rest.
// Returns true if the client was a member.
func (r *Room) Remove(c *Client) bool {
	for i := range r.participants {
		if r.participants[i].client == c {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether the client is a member of the room.
func (r *Room) Has(c *Client) bool {
	_, ok := r.Role(c)
	return ok
}

// Role returns the role held by the client, if a member.
func (r *Room) Role(c *Client) (Role, bool) {
	for i := range r.participants {
		if r.participants[i].client == c {
			return r.participants[i].role, true
		}
	}
	return "", false
}

// Mentor returns the participant holding the mentor role, or nil.
func (r *Room) Mentor() *Client {
	for i := range r.participants {
		if r.participants[i].role == RoleMentor {
			return r.participants[i].client
		}
	}
	return nil
}

// StudentCount returns the number of participants holding the student role.
func (r *Room) StudentCount() int {
	n := 0
	for i := range r.participants {
		if r.participants[i].role == RoleStudent {
			n++
		}
	}
	return n
}

// Members returns the participants in join order.
func (r *Room) Members() []*Client {
	out := make([]*Client, 0, len(r.participants))
	for i := range r.participants {
		out = append(out, r.participants[i].client)
	}
	return out
}

// Empty returns true if no participants are in the room.
func (r *Room) Empty() bool {
	return len(r.participants) == 0
}

// Broadcast sends an event to all participants except those excluded.
// Delivery is per-peer best effort: a full event channel drops that peer's
// copy without stalling the rest of the room.
func (r *Room) Broadcast(event *Event, exclude ...*Client) {
	for i := range r.participants {
		c := r.participants[i].client
		if excluded(c, exclude) {
			continue
		}
		select {
		case c.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

func excluded(c *Client, exclude []*Client) bool {
	for _, e := range exclude {
		if e == c {
			return true
		}
	}
	return false
}
