package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportScoreboard(t *testing.T) {
	file := filepath.Join(t.TempDir(), "results", "quiz.txt")

	scores := []ScoreEntry{
		{PlayerID: "b", Name: "Beto", Score: 180},
		{PlayerID: "a", Name: "Ana", Score: 0},
	}
	if err := exportScoreboard(file, "123456", "q1", scores); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	// Appending a second round must not truncate the first.
	if err := exportScoreboard(file, "123456", "q2", scores); err != nil {
		t.Fatalf("second export failed: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "1. Beto: 180 pontos") {
		t.Fatalf("missing winner line in export:\n%s", content)
	}
	if !strings.Contains(content, "pergunta q1") || !strings.Contains(content, "pergunta q2") {
		t.Fatalf("export should hold both rounds:\n%s", content)
	}
}
