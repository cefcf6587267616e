package game

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StartRound draws a question, installs it as the room's active round and
// broadcasts it. A no-op when the room is gone, not started, empty, or
// already mid-round. The deadline timer fires endRound for this round only;
// a round that ended early leaves the timer to expire as a no-op.
func (r *Registry) StartRound(pin string) {
	room := r.room(pin)
	if room == nil {
		return
	}
	q := r.src.Random()
	duration, ok := roundDurations[q.Difficulty]
	if !ok {
		duration = defaultRoundDuration
	}

	room.mu.Lock()
	if room.closed || !room.Started || room.round != nil || len(room.players) == 0 {
		room.mu.Unlock()
		return
	}
	round := &Round{
		ID:        uuid.NewString(),
		Question:  q,
		StartedAt: time.Now(),
		Duration:  duration,
		answers:   make(map[string]int),
	}
	room.round = round
	members := room.memberIDsLocked()
	room.mu.Unlock()

	log.Info().Str("pin", pin).Str("questionId", q.ID).Str("difficulty", string(q.Difficulty)).
		Dur("duration", duration).Msg("round started")

	r.sendToAll(members, "question", RoundQuestion{
		Text:            q.Text,
		Options:         q.Options,
		Difficulty:      q.Difficulty,
		DurationSeconds: int(duration / time.Second),
	})

	time.AfterFunc(duration, func() {
		r.endRound(pin, round.ID)
	})
}

// SubmitAnswer records the caller's answer for their room's active round,
// scores it, and privately reports the result. When the last present player
// answers, the round ends without waiting for the timer.
func (r *Registry) SubmitAnswer(playerID string, optionIndex int) error {
	pin, ok := r.playerPin(playerID)
	if !ok {
		return ErrNotInRoom
	}
	room := r.room(pin)
	if room == nil {
		return ErrNotInRoom
	}

	room.mu.Lock()
	if room.players[playerID] == nil {
		room.mu.Unlock()
		return ErrNotInRoom
	}
	round := room.round
	if round == nil {
		room.mu.Unlock()
		return ErrNoActiveRound
	}
	if _, answered := round.answers[playerID]; answered {
		room.mu.Unlock()
		return ErrAlreadyAnswered
	}
	now := time.Now()
	if now.After(round.deadline()) {
		room.mu.Unlock()
		return ErrTimeOver
	}
	if optionIndex < 0 || optionIndex >= len(round.Question.Options) {
		room.mu.Unlock()
		return ErrInvalidAnswer
	}

	round.answers[playerID] = optionIndex
	round.answerOrder = append(round.answerOrder, playerID)
	correct := optionIndex == round.Question.CorrectIndex
	points := 0
	if correct {
		points = scorePoints(round.StartedAt, round.Duration, now)
		room.players[playerID].Score += points
	}
	result := AnswerResult{Correct: correct, Points: points, CorrectIndex: round.Question.CorrectIndex}
	done := room.roundCompleteLocked()
	roundID := round.ID
	room.mu.Unlock()

	log.Info().Str("pin", pin).Str("playerId", playerID).Bool("correct", correct).
		Int("points", points).Msg("answer recorded")

	r.sendToPlayer(playerID, "answer_result", result)
	if done {
		r.endRound(pin, roundID)
	}
	return nil
}

// scorePoints awards the base plus a speed bonus that decays linearly to
// zero at the deadline and never goes negative.
func scorePoints(startedAt time.Time, duration time.Duration, submittedAt time.Time) int {
	remaining := duration - submittedAt.Sub(startedAt)
	if remaining < 0 {
		remaining = 0
	}
	bonus := int(float64(MaxSpeedBonus) * remaining.Seconds() / duration.Seconds())
	return BasePoints + bonus
}

// EndRound closes the room's active round, if any: scoreboard broadcast,
// round cleared, round_ended notice. Idempotent.
func (r *Registry) EndRound(pin string) {
	r.endRound(pin, "")
}

// endRound closes the active round when roundID matches it ("" matches any
// round). The ID check keeps a stale deadline timer from killing a newer
// round.
func (r *Registry) endRound(pin, roundID string) {
	room := r.room(pin)
	if room == nil {
		return
	}

	room.mu.Lock()
	round := room.round
	if round == nil || (roundID != "" && round.ID != roundID) {
		room.mu.Unlock()
		return
	}
	room.round = nil
	scores := room.scoreboardLocked()
	members := room.memberIDsLocked()
	room.mu.Unlock()

	log.Info().Str("pin", pin).Str("questionId", round.Question.ID).Msg("round ended")

	r.sendToAll(members, "scoreboard", Scoreboard{Scores: scores})
	r.sendToAll(members, "round_ended", RoundEnded{QuestionID: round.Question.ID})

	if r.settings.ExportEnabled {
		if err := exportScoreboard(r.settings.ExportFile, pin, round.Question.ID, scores); err != nil {
			log.Error().Err(err).Str("pin", pin).Msg("failed to export scoreboard")
		}
	}

	if r.settings.AutoAdvance {
		time.AfterFunc(r.settings.NextRoundDelay, func() {
			r.StartRound(pin)
		})
	}
}

// scoreboardLocked orders players by score descending; ties keep join
// order. Caller holds room.mu.
func (room *Room) scoreboardLocked() []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(room.order))
	for _, id := range room.order {
		p := room.players[id]
		if p == nil {
			continue
		}
		entries = append(entries, ScoreEntry{PlayerID: p.ID, Name: p.Name, Score: p.Score})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
