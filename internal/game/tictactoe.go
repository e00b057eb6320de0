// Package game implements the shared tic-tac-toe mini-game. At most one
// match is live at a time; creating a new one replaces the old.
package game

// TypeTicTacToe is the only match type currently supported.
const TypeTicTacToe = "tictactoe"

const (
	MarkX = "X"
	MarkO = "O"
	// DrawMarker is stored as the winner when the board fills with no
	// three-in-a-row.
	DrawMarker = "draw"
)

const maxPlayers = 2

// winLines are the 8 winning lines: 3 rows, 3 columns, 2 diagonals.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Match is a single live game. Marks are positional: players[0] plays X,
// players[1] plays O.
type Match struct {
	Type    string
	Host    string
	Players []string
	Board   [9]string
	Turn    string // username whose turn it is; empty until locked
	Winner  string // winning mark, DrawMarker, or empty while undecided
	Open    bool
	Started bool
}

// Snapshot is the gameState payload broadcast after every transition.
type Snapshot struct {
	Type    string    `json:"type"`
	Host    string    `json:"host"`
	Players []string  `json:"players"`
	Board   [9]string `json:"board"`
	Turn    string    `json:"turn"`
	Winner  string    `json:"winner"`
	Open    bool      `json:"open"`
	Started bool      `json:"started"`
}

// Lobby holds the single live match, if any.
type Lobby struct {
	match *Match
}

func NewLobby() *Lobby {
	return &Lobby{}
}

// Create replaces any existing match with a fresh open one hosted by the
// creator, who is also its first player.
func (l *Lobby) Create(host, gameType string) {
	if gameType == "" {
		gameType = TypeTicTacToe
	}
	l.match = &Match{
		Type:    gameType,
		Host:    host,
		Players: []string{host},
		Open:    true,
	}
}

// Join adds a player to the open match. No-op once locked, full, or if
// the player already joined.
func (l *Lobby) Join(username string) bool {
	m := l.match
	if m == nil || !m.Open || len(m.Players) >= maxPlayers {
		return false
	}
	for _, p := range m.Players {
		if p == username {
			return false
		}
	}
	m.Players = append(m.Players, username)
	return true
}

// Lock freezes membership, resets the board, and starts the match with
// the first player's turn. Only the host may lock; the core additionally
// allows the owner through via hostOverride.
func (l *Lobby) Lock(actor string, hostOverride bool) bool {
	m := l.match
	if m == nil || !m.Open {
		return false
	}
	if m.Host != actor && !hostOverride {
		return false
	}
	m.Open = false
	m.Started = true
	m.Board = [9]string{}
	m.Winner = ""
	m.Turn = m.Players[0]
	return true
}

// Move places the mover's mark at index. Valid only while started with no
// winner, for a current player on their turn, into an empty cell.
func (l *Lobby) Move(username string, index int) bool {
	m := l.match
	if m == nil || !m.Started || m.Winner != "" {
		return false
	}
	if username != m.Turn {
		return false
	}
	mark, ok := m.markOf(username)
	if !ok {
		return false
	}
	if index < 0 || index >= len(m.Board) || m.Board[index] != "" {
		return false
	}

	m.Board[index] = mark

	if w := winnerOf(m.Board); w != "" {
		m.Winner = w
		return true
	}
	if boardFull(m.Board) {
		m.Winner = DrawMarker
		return true
	}
	// Turn passing only means something with both players present; a
	// degenerate single-player match keeps the turn.
	if len(m.Players) == maxPlayers {
		if username == m.Players[0] {
			m.Turn = m.Players[1]
		} else {
			m.Turn = m.Players[0]
		}
	}
	return true
}

// Snapshot returns the broadcastable game state, or nil when no match
// has ever been created.
func (l *Lobby) Snapshot() *Snapshot {
	m := l.match
	if m == nil {
		return nil
	}
	players := make([]string, len(m.Players))
	copy(players, m.Players)
	return &Snapshot{
		Type:    m.Type,
		Host:    m.Host,
		Players: players,
		Board:   m.Board,
		Turn:    m.Turn,
		Winner:  m.Winner,
		Open:    m.Open,
		Started: m.Started,
	}
}

func (m *Match) markOf(username string) (string, bool) {
	for i, p := range m.Players {
		if p == username {
			if i == 0 {
				return MarkX, true
			}
			return MarkO, true
		}
	}
	return "", false
}

func winnerOf(board [9]string) string {
	for _, line := range winLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != "" && a == b && b == c {
			return a
		}
	}
	return ""
}

func boardFull(board [9]string) bool {
	for _, cell := range board {
		if cell == "" {
			return false
		}
	}
	return true
}
