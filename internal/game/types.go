package game

import (
	"sync"
	"time"

	"github.com/LucasPluccas/quiz-b-blico-multiplayer/internal/quiz"
)

const (
	MaxPlayers    = 4
	MinPlayers    = 1
	PinLength     = 6
	BasePoints    = 100
	MaxSpeedBonus = 100
)

// roundDurations maps a question's difficulty to its answering window.
var roundDurations = map[quiz.Difficulty]time.Duration{
	quiz.DifficultyEasy:        15 * time.Second,
	quiz.DifficultyMedium:      20 * time.Second,
	quiz.DifficultyHard:        25 * time.Second,
	quiz.DifficultyApocalyptic: 30 * time.Second,
}

const defaultRoundDuration = 20 * time.Second

type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"isHost"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Round is one timed question cycle. Guarded by the owning Room's mutex.
type Round struct {
	ID        string
	Question  quiz.Question
	StartedAt time.Time
	Duration  time.Duration

	answers     map[string]int // playerID -> submitted option index
	answerOrder []string       // playerIDs in submission order
}

func (r *Round) deadline() time.Time {
	return r.StartedAt.Add(r.Duration)
}

// Room holds one lobby's full state. All fields are guarded by mu; the
// Registry only touches them with mu held. order preserves join order so
// host transfer and scoreboard tie-breaks stay deterministic.
type Room struct {
	PIN     string
	HostID  string
	Started bool

	players map[string]*Player
	order   []string
	round   *Round
	closed  bool

	mu sync.Mutex
}

func (room *Room) memberIDsLocked() []string {
	ids := make([]string, len(room.order))
	copy(ids, room.order)
	return ids
}

// roundCompleteLocked reports whether every currently present player has
// answered the active round. Answers left behind by players who already
// left are ignored.
func (room *Room) roundCompleteLocked() bool {
	if room.round == nil || len(room.players) == 0 {
		return false
	}
	for id := range room.players {
		if _, ok := room.round.answers[id]; !ok {
			return false
		}
	}
	return true
}

// Wire payloads.

type PlayerState struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Score  int    `json:"score"`
}

// RoomState is the public snapshot broadcast as room_state. It never carries
// round internals.
type RoomState struct {
	PIN        string        `json:"pin"`
	Started    bool          `json:"started"`
	MaxPlayers int           `json:"maxPlayers"`
	Players    []PlayerState `json:"players"`
	Count      int           `json:"count"`
}

// RoundQuestion is the broadcast question. The correct index is deliberately
// absent from this type.
type RoundQuestion struct {
	Text            string          `json:"question"`
	Options         []string        `json:"options"`
	Difficulty      quiz.Difficulty `json:"difficulty"`
	DurationSeconds int             `json:"durationSeconds"`
}

// AnswerResult goes to the submitting player only.
type AnswerResult struct {
	Correct      bool `json:"correct"`
	Points       int  `json:"points"`
	CorrectIndex int  `json:"correctIndex"`
}

type ScoreEntry struct {
	PlayerID string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

type Scoreboard struct {
	Scores []ScoreEntry `json:"scores"`
}

type RoundEnded struct {
	QuestionID string `json:"questionId"`
}

// Sender delivers one event to one player's live connection. Implementations
// must be safe for concurrent use and treat a missing connection as a no-op.
type Sender interface {
	Send(playerID, event string, payload any)
}

// QuestionSource yields one question per round.
type QuestionSource interface {
	Random() quiz.Question
}

// Settings are deployment knobs for the round engine.
type Settings struct {
	AutoAdvance    bool
	NextRoundDelay time.Duration
	ExportEnabled  bool
	ExportFile     string
}
