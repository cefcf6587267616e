package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// exportScoreboard appends one finished round's scoreboard to a text file.
func exportScoreboard(filename, pin, questionID string, scores []ScoreEntry) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sala %s - pergunta %s - %s\n", pin, questionID, time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	for i, entry := range scores {
		sb.WriteString(fmt.Sprintf("%d. %s: %d pontos\n", i+1, entry.Name, entry.Score))
	}
	sb.WriteString("\n")

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
