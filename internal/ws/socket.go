package ws

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/LucasPluccas/quiz-b-blico-multiplayer/internal/game"
)

// ConnCtx is attached to every socket connection.
type ConnCtx struct {
	PlayerID string
}

// Server is the realtime boundary: it routes inbound client actions to the
// game registry and implements game.Sender for outbound delivery.
type Server struct {
	registry *game.Registry

	mu    sync.RWMutex
	conns map[string]socketio.Conn // playerID -> live connection
}

func New(registry *game.Registry) *Server {
	return &Server{registry: registry, conns: make(map[string]socketio.Conn)}
}

// Send implements game.Sender. Missing connections are skipped; the player
// simply receives nothing until they connect again.
func (srv *Server) Send(playerID, event string, payload any) {
	srv.mu.RLock()
	c := srv.conns[playerID]
	srv.mu.RUnlock()
	if c == nil {
		return
	}
	c.Emit(event, payload)
}

func (srv *Server) register(playerID string, c socketio.Conn) {
	srv.mu.Lock()
	srv.conns[playerID] = c
	srv.mu.Unlock()
}

func (srv *Server) unregister(playerID string, c socketio.Conn) {
	srv.mu.Lock()
	if srv.conns[playerID] == c {
		delete(srv.conns, playerID)
	}
	srv.mu.Unlock()
}

// Mount attaches the Socket.IO server with all event handlers to the given
// Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		u := s.URL()
		playerID := u.Query().Get("playerId")
		if playerID == "" {
			playerID = uuid.NewString()
		}
		s.SetContext(&ConnCtx{PlayerID: playerID})
		srv.register(playerID, s)
		log.Info().Str("sid", s.ID()).Str("playerId", playerID).Msg("socket connected")
		s.Emit("room_joined", map[string]any{"playerId": playerID})
		return nil
	})

	io.OnEvent("/", "ping", func(s socketio.Conn) map[string]any {
		s.Emit("pong", map[string]any{})
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "create_room", func(s socketio.Conn, payload struct {
		DisplayName string `json:"displayName"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		name := strings.TrimSpace(payload.DisplayName)
		if name == "" {
			return srv.err(s, "INVALID_NAME", "Informe seu nome.")
		}
		state, err := srv.registry.CreateRoom(ctx.PlayerID, name)
		if err != nil {
			return srv.gameErr(s, err)
		}
		log.Info().Str("playerId", ctx.PlayerID).Str("pin", state.PIN).Msg("create_room")
		s.Emit("room_created", map[string]any{"playerId": ctx.PlayerID, "room": state})
		return map[string]any{"pin": state.PIN}
	})

	io.OnEvent("/", "join_room", func(s socketio.Conn, payload struct {
		DisplayName string `json:"displayName"`
		Pin         string `json:"pin"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		name := strings.TrimSpace(payload.DisplayName)
		pin := strings.TrimSpace(payload.Pin)
		if name == "" {
			return srv.err(s, "INVALID_NAME", "Informe seu nome.")
		}
		if !validPin(pin) {
			return srv.err(s, "INVALID_PIN", "PIN inválido.")
		}
		state, err := srv.registry.JoinRoom(ctx.PlayerID, name, pin)
		if err != nil {
			return srv.gameErr(s, err)
		}
		log.Info().Str("playerId", ctx.PlayerID).Str("pin", pin).Msg("join_room")
		s.Emit("room_joined", map[string]any{"playerId": ctx.PlayerID, "room": state})
		return map[string]any{"pin": state.PIN}
	})

	io.OnEvent("/", "leave_room", func(s socketio.Conn) map[string]any {
		ctx := s.Context().(*ConnCtx)
		srv.registry.Leave(ctx.PlayerID)
		log.Info().Str("playerId", ctx.PlayerID).Msg("leave_room")
		s.Emit("room_state", map[string]any{"left": true})
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "start_game", func(s socketio.Conn) map[string]any {
		ctx := s.Context().(*ConnCtx)
		state, err := srv.registry.StartGame(ctx.PlayerID)
		if err != nil {
			return srv.gameErr(s, err)
		}
		log.Info().Str("playerId", ctx.PlayerID).Str("pin", state.PIN).Msg("start_game")
		return map[string]any{"ok": true}
	})

	io.OnEvent("/", "answer", func(s socketio.Conn, payload struct {
		OptionIndex int `json:"optionIndex"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		if err := srv.registry.SubmitAnswer(ctx.PlayerID, payload.OptionIndex); err != nil {
			return srv.gameErr(s, err)
		}
		return map[string]any{"ok": true}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.PlayerID != "" {
			srv.unregister(ctx.PlayerID, s)
			srv.registry.Leave(ctx.PlayerID)
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

func validPin(pin string) bool {
	if len(pin) < 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// gameErr translates a core error into a stable wire code sent only to the
// offending connection.
func (srv *Server) gameErr(s socketio.Conn, err error) map[string]any {
	code, message := wireError(err)
	return srv.err(s, code, message)
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": code}
}

func wireError(err error) (string, string) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return "ROOM_NOT_FOUND", "Sala não encontrada."
	case errors.Is(err, game.ErrRoomAlreadyStarted):
		return "ROOM_ALREADY_STARTED", "A partida já começou."
	case errors.Is(err, game.ErrRoomFull):
		return "ROOM_FULL", "Sala cheia (máximo 4 jogadores)."
	case errors.Is(err, game.ErrNotInRoom):
		return "NOT_IN_ROOM", "Você não está em uma sala."
	case errors.Is(err, game.ErrNotHost):
		return "NOT_HOST", "Apenas o host pode iniciar."
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "NOT_ENOUGH_PLAYERS", "Não há jogadores suficientes."
	case errors.Is(err, game.ErrNoActiveRound):
		return "NO_ACTIVE_ROUND", "Nenhuma rodada ativa."
	case errors.Is(err, game.ErrAlreadyAnswered):
		return "ALREADY_ANSWERED", "Você já respondeu esta rodada."
	case errors.Is(err, game.ErrTimeOver):
		return "TIME_OVER", "Tempo esgotado."
	case errors.Is(err, game.ErrInvalidAnswer):
		return "INVALID_ANSWER", "Resposta inválida."
	case errors.Is(err, game.ErrPinExhausted):
		return "PIN_EXHAUSTED", "Não foi possível criar a sala, tente novamente."
	default:
		return "UNKNOWN_ACTION", "Ação desconhecida."
	}
}
