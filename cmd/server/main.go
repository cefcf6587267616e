package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/LucasPluccas/quiz-b-blico-multiplayer/internal/config"
	"github.com/LucasPluccas/quiz-b-blico-multiplayer/internal/game"
	"github.com/LucasPluccas/quiz-b-blico-multiplayer/internal/quiz"
	"github.com/LucasPluccas/quiz-b-blico-multiplayer/internal/ws"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Quiz Bíblico Multiplayer - Real-time trivia rooms

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                        Port to listen on (default: 8080)
  AUTO_ADVANCE                Start the next round automatically (default: true)
  NEXT_ROUND_DELAY_SECONDS    Pause between rounds (default: 5)
  EXPORT_ENABLED              Export scoreboards to file (default: false)
  EXPORT_FILE                 Path to export scoreboards (default: ./quiz-results.txt)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Quiz Bíblico Multiplayer %s\n", version)
		return
	}

	cfg := config.FromEnv()

	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Game core + realtime boundary
	catalog := quiz.NewCatalog()
	zerologlog.Info().Int("questions", catalog.Len()).Msg("question catalog loaded")
	registry := game.NewRegistry(catalog, game.Settings{
		AutoAdvance:    cfg.AutoAdvance,
		NextRoundDelay: time.Duration(cfg.NextRoundDelaySeconds) * time.Second,
		ExportEnabled:  cfg.ExportEnabled,
		ExportFile:     cfg.ExportFile,
	})
	sock := ws.New(registry)
	registry.SetSender(sock)
	io := sock.Mount(r)
	defer io.Close()

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
