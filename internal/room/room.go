// Package room manages avatar positions and seat occupancy in the 2D room.
package room

import "parlor/backend/internal/models"

// Room bounds. Free-moving avatars are clamped inside; seat coordinates
// override free-move coordinates entirely.
const (
	Width  = 800
	Height = 600
	SpawnX = 20
	SpawnY = 20
)

// DefaultSeats is the fixed seat layout, defined at startup and
// referenced by index.
var DefaultSeats = []models.Seat{
	{X: 120, Y: 420},
	{X: 200, Y: 420},
	{X: 280, Y: 420},
	{X: 520, Y: 420},
	{X: 600, Y: 420},
	{X: 680, Y: 420},
}

// State tracks every live avatar. Callers serialize access.
type State struct {
	seats   []models.Seat
	avatars map[string]*models.RoomAvatar
	retain  bool
}

// NewState creates a room with the given seat layout. When retain is
// true, avatars survive disconnects and keep their position.
func NewState(seats []models.Seat, retain bool) *State {
	return &State{
		seats:   seats,
		avatars: make(map[string]*models.RoomAvatar),
		retain:  retain,
	}
}

// Enter creates an avatar at the spawn point on first join, or refreshes
// its profile mirror fields while keeping its position.
func (s *State) Enter(acct *models.Account) {
	if av, ok := s.avatars[acct.Username]; ok {
		av.Avatar = acct.Avatar
		av.Color = acct.Color
		av.Role = acct.Role
		return
	}
	s.avatars[acct.Username] = &models.RoomAvatar{
		Username: acct.Username,
		X:        SpawnX,
		Y:        SpawnY,
		Avatar:   acct.Avatar,
		Color:    acct.Color,
		Role:     acct.Role,
	}
}

// Refresh updates an avatar's mirror fields after a profile or role
// change. No-op if the user is not in the room.
func (s *State) Refresh(acct *models.Account) bool {
	av, ok := s.avatars[acct.Username]
	if !ok {
		return false
	}
	av.Avatar = acct.Avatar
	av.Color = acct.Color
	av.Role = acct.Role
	return true
}

// Move updates a free-moving avatar's position, clamped into the room
// bounds. Seated avatars do not move; returns false with no state change.
func (s *State) Move(username string, x, y int) bool {
	av, ok := s.avatars[username]
	if !ok || av.SeatIndex != nil {
		return false
	}
	av.X = clamp(x, 0, Width)
	av.Y = clamp(y, 0, Height)
	return true
}

// Sit binds an avatar to a seat. Returns false for an unknown user, an
// out-of-range index, or a seat occupied by a different avatar.
func (s *State) Sit(username string, seatIndex int) bool {
	av, ok := s.avatars[username]
	if !ok {
		return false
	}
	if seatIndex < 0 || seatIndex >= len(s.seats) {
		return false
	}
	if s.seatTaken(seatIndex, username) {
		return false
	}
	seat := s.seats[seatIndex]
	idx := seatIndex
	av.SeatIndex = &idx
	av.X = seat.X
	av.Y = seat.Y
	return true
}

// Stand clears an avatar's seat binding; the avatar keeps the seat's
// coordinates until its next move.
func (s *State) Stand(username string) bool {
	av, ok := s.avatars[username]
	if !ok || av.SeatIndex == nil {
		return false
	}
	av.SeatIndex = nil
	return true
}

// Disconnect handles a user's last connection going away, honoring the
// retention policy.
func (s *State) Disconnect(username string) bool {
	if s.retain {
		return false
	}
	return s.Remove(username)
}

// Remove deletes an avatar unconditionally (kick, ban).
func (s *State) Remove(username string) bool {
	if _, ok := s.avatars[username]; !ok {
		return false
	}
	delete(s.avatars, username)
	return true
}

// Get returns the live avatar for a username, or nil.
func (s *State) Get(username string) *models.RoomAvatar {
	return s.avatars[username]
}

// Snapshot copies the full room state for a roomUpdate broadcast.
func (s *State) Snapshot() models.RoomSnapshot {
	avatars := make(map[string]models.RoomAvatar, len(s.avatars))
	for name, av := range s.avatars {
		dup := *av
		if av.SeatIndex != nil {
			idx := *av.SeatIndex
			dup.SeatIndex = &idx
		}
		avatars[name] = dup
	}
	seats := make([]models.Seat, len(s.seats))
	copy(seats, s.seats)
	return models.RoomSnapshot{Avatars: avatars, Seats: seats}
}

func (s *State) seatTaken(seatIndex int, except string) bool {
	for name, av := range s.avatars {
		if name != except && av.SeatIndex != nil && *av.SeatIndex == seatIndex {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
