package models

// Seat is a fixed coordinate slot in the room, referenced by index.
// Avatars bound to a seat take the seat's coordinates.
type Seat struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RoomAvatar is a user's live presence in the 2D room. SeatIndex is nil
// while the avatar is free-moving.
type RoomAvatar struct {
	Username  string `json:"username"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	SeatIndex *int   `json:"seatIndex"`
	Avatar    string `json:"avatar"`
	Color     string `json:"color"`
	Role      Role   `json:"role"`
}

// RoomSnapshot is the full room state pushed on every roomUpdate.
type RoomSnapshot struct {
	Avatars map[string]RoomAvatar `json:"avatars"`
	Seats   []Seat                `json:"seats"`
}
