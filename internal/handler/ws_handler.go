package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jamgrade/jamgrade-backend/internal/answer"
	"github.com/jamgrade/jamgrade-backend/internal/config"
	"github.com/jamgrade/jamgrade-backend/internal/middleware"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/phase"
	"github.com/jamgrade/jamgrade-backend/internal/service"
	ws "github.com/jamgrade/jamgrade-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// phasePollInterval drives the redirect push on the student stream.
const phasePollInterval = 2 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the student live exam stream and the professor monitor
// stream.
type WSHandler struct {
	rdb            *redis.Client
	sessionService *service.SessionService
	answerService  *service.AnswerService
	debounceWait   time.Duration
	writeTimeout   time.Duration
	readTimeout    time.Duration
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	rdb *redis.Client,
	sessionService *service.SessionService,
	answerService *service.AnswerService,
	cfg *config.Config,
	log zerolog.Logger,
) *WSHandler {
	return &WSHandler{
		rdb:            rdb,
		sessionService: sessionService,
		answerService:  answerService,
		debounceWait:   cfg.AutosaveDebounce,
		writeTimeout:   cfg.WSWriteTimeout,
		readTimeout:    cfg.WSReadTimeout,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(cfg.AllowedOrigins),
	}
}

// StudentStream godoc
// WS /ws/v1/student/jam-sessions/:session_id/stream
// Upgrades to WebSocket for debounced answer autosave and live phase
// redirects.
func (h *WSHandler) StudentStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	joined, err := h.sessionService.IsParticipant(c.Request.Context(), sessionID, claims.Email)
	if err != nil || !joined {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this session"})
		return
	}

	// The redirect watcher needs the group scope to build student routes.
	session, err := h.sessionService.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	sock, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(sock, h.writeTimeout, h.readTimeout)
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_email", claims.Email).
		Str("session_id", sessionID.String()).
		Logger()
	wsLog.Info().Msg("Student connected")

	// Rapid edits on the same question collapse into one queue item per
	// debounce window. Close flushes whatever is still pending, so the last
	// keystroke before a disconnect is never lost.
	debouncer := answer.NewDebouncer(h.debounceWait, func(key string, value any) {
		questionID, err := uuid.Parse(key)
		if err != nil {
			return
		}
		raw, _ := value.(*model.RawAnswer)
		if err := h.answerService.QueueAutosave(context.Background(), sessionID, questionID, claims.Email, raw); err != nil {
			wsLog.Error().Err(err).Str("question_id", key).Msg("Autosave flush failed")
		}
	})
	defer debouncer.Close()

	// Push a redirect the moment the phase leaves IN_PROGRESS.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go h.watchPhase(watchCtx, conn, wsLog, session.GroupScope, sessionID)

	for {
		raw := json.RawMessage{}
		var envelope ws.RequestEnvelope

		if err := conn.ReadJSON(&raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			conn.WriteError("malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionAutosave:
			h.handleAutosave(conn, debouncer, raw)
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(envelope.Action))
		}
	}
}

// handleAutosave validates the edit and drops it into the debounce window.
func (h *WSHandler) handleAutosave(conn *ws.Conn, debouncer *answer.Debouncer, raw json.RawMessage) {
	var req ws.AutosaveRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		conn.WriteError("malformed autosave")
		return
	}
	if req.QuestionID == "" {
		conn.WriteError("question_id is required")
		return
	}
	if _, err := uuid.Parse(req.QuestionID); err != nil {
		conn.WriteError("invalid question_id format")
		return
	}

	// A JSON null (or absent) answer deletes the stored answer.
	var rawAnswer *model.RawAnswer
	if len(req.Answer) > 0 && string(req.Answer) != "null" {
		rawAnswer = &model.RawAnswer{}
		if err := json.Unmarshal(req.Answer, rawAnswer); err != nil {
			conn.WriteError("malformed answer payload")
			return
		}
	}

	debouncer.Trigger(req.QuestionID, rawAnswer)
	conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QuestionID: req.QuestionID})
}

// studentRedirect builds the redirect event for a phase, or false for a
// phase without a student route.
func studentRedirect(p model.SessionPhase, groupScope string, sessionID uuid.UUID) (ws.RedirectResponse, bool) {
	route, ok := phase.Resolve(phase.StudentRoutes, p, groupScope, sessionID.String())
	if !ok {
		return ws.RedirectResponse{}, false
	}
	return ws.RedirectResponse{
		Event: ws.EventRedirect,
		Phase: string(p),
		Route: route,
	}, true
}

// watchPhase polls the cached phase and pushes a redirect event on change.
func (h *WSHandler) watchPhase(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, groupScope string, sessionID uuid.UUID) {
	ticker := time.NewTicker(phasePollInterval)
	defer ticker.Stop()

	var lastPhase model.SessionPhase
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p, err := h.sessionService.CachedPhase(ctx, sessionID)
			if err != nil {
				continue
			}
			if lastPhase == "" {
				lastPhase = p
				continue
			}
			if p == lastPhase {
				continue
			}
			lastPhase = p

			event, ok := studentRedirect(p, groupScope, sessionID)
			if !ok {
				continue
			}
			if err := conn.WriteTyped(event); err != nil {
				wsLog.Debug().Err(err).Msg("Redirect push failed")
				return
			}
		}
	}
}

// MonitorStream godoc
// WS /ws/v1/professor/:group_scope/jam-sessions/:session_id/monitor
// Forwards the session's monitor events (joins, saves, phase and grading
// changes) to the professor.
func (h *WSHandler) MonitorStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if !claims.HasGroup(c.Param("group_scope")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	sock, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(sock, h.writeTimeout, h.readTimeout)
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_email", claims.Email).
		Str("session_id", sessionID.String()).
		Logger()
	wsLog.Info().Msg("Monitor connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.rdb.Subscribe(ctx, config.CacheKey.SessionMonitorChannel(sessionID.String()))
	defer sub.Close()

	// Reader goroutine: surfaces client disconnects and answers pings.
	go func() {
		defer cancel()
		for {
			var envelope ws.RequestEnvelope
			if err := conn.ReadJSON(&envelope); err != nil {
				return
			}
			if envelope.Action == ws.ActionPing {
				conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Monitor closed")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteTyped(ws.MonitorResponse{
				Event:   ws.EventMonitor,
				Payload: json.RawMessage(msg.Payload),
			}); err != nil {
				wsLog.Debug().Err(err).Msg("Monitor push failed")
				return
			}
		}
	}
}
