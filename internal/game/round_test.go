package game

import (
	"testing"
	"time"
)

// startedRoom creates a room with the given players, starts the game and
// returns the pin. The first player is host.
func startedRoom(t *testing.T, reg *Registry, playerIDs ...string) string {
	t.Helper()
	state, err := reg.CreateRoom(playerIDs[0], "Jogador-"+playerIDs[0])
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, id := range playerIDs[1:] {
		if _, err := reg.JoinRoom(id, "Jogador-"+id, state.PIN); err != nil {
			t.Fatalf("join %s failed: %v", id, err)
		}
	}
	if _, err := reg.StartGame(playerIDs[0]); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return state.PIN
}

func activeRound(t *testing.T, reg *Registry, pin string) *Round {
	t.Helper()
	room := reg.room(pin)
	if room == nil {
		t.Fatal("room should exist")
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.round
}

func playerScore(t *testing.T, reg *Registry, pin, playerID string) int {
	t.Helper()
	room := reg.room(pin)
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.players[playerID].Score
}

func TestSubmitAnswerScoresAndReportsPrivately(t *testing.T) {
	reg, sender := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b")
	sender.reset()

	if err := reg.SubmitAnswer("b", testQuestion.CorrectIndex); err != nil {
		t.Fatalf("correct answer should be accepted: %v", err)
	}
	score := playerScore(t, reg, pin, "b")
	if score < BasePoints || score > BasePoints+MaxSpeedBonus {
		t.Fatalf("correct answer near start should score in [%d,%d], got %d", BasePoints, BasePoints+MaxSpeedBonus, score)
	}

	results := sender.forPlayer("b", "answer_result")
	if len(results) != 1 {
		t.Fatalf("expected 1 private result for b, got %d", len(results))
	}
	res := results[0].Payload.(AnswerResult)
	if !res.Correct || res.Points != score || res.CorrectIndex != testQuestion.CorrectIndex {
		t.Fatalf("unexpected answer_result: %+v", res)
	}
	if len(sender.forPlayer("a", "answer_result")) != 0 {
		t.Fatal("answer_result must never reach other players")
	}

	if err := reg.SubmitAnswer("a", testQuestion.CorrectIndex+1); err != nil {
		t.Fatalf("wrong answer should still be accepted: %v", err)
	}
	if got := playerScore(t, reg, pin, "a"); got != 0 {
		t.Fatalf("wrong answer should score 0, got %d", got)
	}
}

func TestSubmitAnswerIdempotence(t *testing.T) {
	reg, _ := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b")

	if err := reg.SubmitAnswer("b", testQuestion.CorrectIndex); err != nil {
		t.Fatalf("first answer failed: %v", err)
	}
	before := playerScore(t, reg, pin, "b")

	if err := reg.SubmitAnswer("b", testQuestion.CorrectIndex); err != ErrAlreadyAnswered {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if after := playerScore(t, reg, pin, "b"); after != before {
		t.Fatalf("second submission must not change score: %d -> %d", before, after)
	}
}

func TestSubmitAnswerTimeBoundary(t *testing.T) {
	reg, _ := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b")

	room := reg.room(pin)

	// Just inside the window: accepted, minimal bonus.
	room.mu.Lock()
	duration := room.round.Duration
	room.round.StartedAt = time.Now().Add(-(duration - time.Second))
	room.mu.Unlock()
	if err := reg.SubmitAnswer("b", testQuestion.CorrectIndex); err != nil {
		t.Fatalf("answer just before the deadline should be accepted: %v", err)
	}
	late := playerScore(t, reg, pin, "b")
	if late < BasePoints || late > BasePoints+MaxSpeedBonus/10 {
		t.Fatalf("near-deadline answer should earn little bonus, got %d", late)
	}

	// Just past the window: rejected.
	room.mu.Lock()
	room.round.StartedAt = time.Now().Add(-(duration + time.Second))
	room.mu.Unlock()
	if err := reg.SubmitAnswer("a", testQuestion.CorrectIndex); err != ErrTimeOver {
		t.Fatalf("expected ErrTimeOver, got %v", err)
	}
	if got := playerScore(t, reg, pin, "a"); got != 0 {
		t.Fatalf("rejected answer must not score, got %d", got)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	reg, _ := newTestRegistry()

	if err := reg.SubmitAnswer("nobody", 0); err != ErrNotInRoom {
		t.Fatalf("expected ErrNotInRoom, got %v", err)
	}

	state, _ := reg.CreateRoom("a", "Ana")
	if err := reg.SubmitAnswer("a", 0); err != ErrNoActiveRound {
		t.Fatalf("expected ErrNoActiveRound before start, got %v", err)
	}

	reg.JoinRoom("b", "Beto", state.PIN)
	if _, err := reg.StartGame("a"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := reg.SubmitAnswer("a", -1); err != ErrInvalidAnswer {
		t.Fatalf("expected ErrInvalidAnswer for -1, got %v", err)
	}
	if err := reg.SubmitAnswer("a", 4); err != ErrInvalidAnswer {
		t.Fatalf("expected ErrInvalidAnswer for out-of-range, got %v", err)
	}
	// A rejected index must not count as this player's answer.
	if err := reg.SubmitAnswer("a", 0); err != nil {
		t.Fatalf("valid answer after invalid attempts should pass: %v", err)
	}
}

func TestAnswersKeepSubmissionOrder(t *testing.T) {
	reg, _ := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b", "c")

	reg.SubmitAnswer("c", 0)
	reg.SubmitAnswer("a", 1)

	room := reg.room(pin)
	room.mu.Lock()
	defer room.mu.Unlock()
	order := room.round.answerOrder
	if len(order) != 2 || order[0] != "c" || order[1] != "a" {
		t.Fatalf("answers should record submission order, got %v", order)
	}
}

func TestScorePointsMonotonicDecay(t *testing.T) {
	start := time.Now()
	duration := 20 * time.Second

	prev := -1
	for elapsed := 0; elapsed <= 25; elapsed++ {
		points := scorePoints(start, duration, start.Add(time.Duration(elapsed)*time.Second))
		if points < BasePoints {
			t.Fatalf("points must never drop below base: elapsed=%ds points=%d", elapsed, points)
		}
		if prev >= 0 && points > prev {
			t.Fatalf("points must not grow with elapsed time: %d -> %d at %ds", prev, points, elapsed)
		}
		prev = points
	}

	if got := scorePoints(start, duration, start); got != BasePoints+MaxSpeedBonus {
		t.Fatalf("instant answer should earn full bonus, got %d", got)
	}
	if got := scorePoints(start, duration, start.Add(duration)); got != BasePoints {
		t.Fatalf("deadline answer should earn base only, got %d", got)
	}
}

func TestEarlyTerminationWhenAllAnswered(t *testing.T) {
	reg, sender := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b")
	sender.reset()

	reg.SubmitAnswer("a", 0)
	if activeRound(t, reg, pin) == nil {
		t.Fatal("round should stay active while answers are missing")
	}
	reg.SubmitAnswer("b", 1)

	if activeRound(t, reg, pin) != nil {
		t.Fatal("round should end once every present player answered")
	}
	if len(sender.byEvent("scoreboard")) != 2 {
		t.Fatal("scoreboard should broadcast to both members")
	}
	ended := sender.byEvent("round_ended")
	if len(ended) != 2 {
		t.Fatal("round_ended should broadcast to both members")
	}
	if ended[0].Payload.(RoundEnded).QuestionID != testQuestion.ID {
		t.Fatalf("round_ended should carry the question id, got %+v", ended[0].Payload)
	}
}

func TestRoundCompletesWhenUnansweredPlayerLeaves(t *testing.T) {
	reg, sender := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b", "c")

	reg.SubmitAnswer("a", testQuestion.CorrectIndex)
	reg.SubmitAnswer("b", 0)
	if activeRound(t, reg, pin) == nil {
		t.Fatal("round should still wait for c")
	}
	sender.reset()

	reg.Leave("c")

	if activeRound(t, reg, pin) != nil {
		t.Fatal("round should complete when the last unanswered player leaves")
	}
	if len(sender.byEvent("scoreboard")) != 2 {
		t.Fatal("scoreboard should reach the two remaining members")
	}
}

func TestHostDisconnectMidRoundKeepsRoundActive(t *testing.T) {
	reg, _ := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b", "c")

	reg.SubmitAnswer("b", testQuestion.CorrectIndex)
	reg.Leave("a")

	room := reg.room(pin)
	room.mu.Lock()
	host := room.HostID
	room.mu.Unlock()
	if host != "b" {
		t.Fatalf("host should transfer to b, got %s", host)
	}
	if activeRound(t, reg, pin) == nil {
		t.Fatal("round must survive a host disconnect while answers are pending")
	}

	if err := reg.SubmitAnswer("c", 0); err != nil {
		t.Fatalf("remaining player should still be able to answer: %v", err)
	}
	if activeRound(t, reg, pin) != nil {
		t.Fatal("round should complete normally after the disconnect")
	}
}

func TestEndRoundIdempotent(t *testing.T) {
	reg, sender := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b")
	sender.reset()

	reg.EndRound(pin)
	if got := len(sender.byEvent("round_ended")); got != 2 {
		t.Fatalf("expected 2 round_ended deliveries, got %d", got)
	}

	reg.EndRound(pin)
	if got := len(sender.byEvent("round_ended")); got != 2 {
		t.Fatal("second EndRound must be a no-op")
	}
}

func TestStaleTimerCannotEndNewerRound(t *testing.T) {
	reg, _ := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b")

	reg.endRound(pin, "some-old-round-id")
	if activeRound(t, reg, pin) == nil {
		t.Fatal("a stale round id must not end the active round")
	}
}

func TestScoreboardOrderAndTieBreak(t *testing.T) {
	reg, sender := newTestRegistry()
	pin := startedRoom(t, reg, "a", "b", "c")

	room := reg.room(pin)
	room.mu.Lock()
	room.players["a"].Score = 100
	room.players["b"].Score = 250
	room.players["c"].Score = 100
	room.mu.Unlock()
	sender.reset()

	reg.EndRound(pin)

	boards := sender.byEvent("scoreboard")
	if len(boards) == 0 {
		t.Fatal("expected scoreboard broadcast")
	}
	scores := boards[0].Payload.(Scoreboard).Scores
	if len(scores) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(scores))
	}
	if scores[0].PlayerID != "b" {
		t.Fatalf("highest score first, got %s", scores[0].PlayerID)
	}
	// a and c tie at 100; a joined first.
	if scores[1].PlayerID != "a" || scores[2].PlayerID != "c" {
		t.Fatalf("ties must keep join order, got %s then %s", scores[1].PlayerID, scores[2].PlayerID)
	}
}

func TestAutoAdvanceStartsNextRound(t *testing.T) {
	reg := NewRegistry(fixedSource{q: testQuestion}, Settings{
		AutoAdvance:    true,
		NextRoundDelay: 10 * time.Millisecond,
	})
	sender := &recordingSender{}
	reg.SetSender(sender)

	pin := startedRoom(t, reg, "a", "b")
	first := activeRound(t, reg, pin).ID

	reg.EndRound(pin)

	deadline := time.Now().Add(2 * time.Second)
	for {
		round := activeRound(t, reg, pin)
		if round != nil && round.ID != first {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("next round should start automatically after the delay")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEndToEndGame(t *testing.T) {
	reg, sender := newTestRegistry()

	created, err := reg.CreateRoom("a", "Ana")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := reg.JoinRoom("b", "Beto", created.PIN); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	joined := sender.byEvent("room_state")
	last := joined[len(joined)-1].Payload.(RoomState)
	if last.Count != 2 || last.Started {
		t.Fatalf("room should hold 2 players and not be started: %+v", last)
	}

	sender.reset()
	if _, err := reg.StartGame("a"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(sender.byEvent("question")) != 2 {
		t.Fatal("question should broadcast to both players")
	}

	// Beto answers correctly right away; Ana gets it wrong at the last
	// instant.
	if err := reg.SubmitAnswer("b", testQuestion.CorrectIndex); err != nil {
		t.Fatalf("b answer failed: %v", err)
	}
	room := reg.room(created.PIN)
	room.mu.Lock()
	room.round.StartedAt = time.Now().Add(-(room.round.Duration - time.Second))
	room.mu.Unlock()
	if err := reg.SubmitAnswer("a", testQuestion.CorrectIndex+1); err != nil {
		t.Fatalf("a answer failed: %v", err)
	}

	if activeRound(t, reg, created.PIN) != nil {
		t.Fatal("round should end once both players answered")
	}
	boards := sender.byEvent("scoreboard")
	if len(boards) != 2 {
		t.Fatalf("expected scoreboard for both players, got %d", len(boards))
	}
	scores := boards[0].Payload.(Scoreboard).Scores
	if scores[0].PlayerID != "b" || scores[0].Score < BasePoints {
		t.Fatalf("Beto should lead with a scored answer: %+v", scores)
	}
	if scores[1].PlayerID != "a" || scores[1].Score != 0 {
		t.Fatalf("Ana should be second with 0 points: %+v", scores)
	}
}
