package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/middleware"
	"github.com/unimatch/unimatch-backend/internal/response"
	"github.com/unimatch/unimatch-backend/internal/service"
	ws "github.com/unimatch/unimatch-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// FeedWSHandler owns the stateful discovery feed over WebSocket. One
// connection maps to at most one feed session; closing the connection
// discards the session but keeps all recorded decisions.
type FeedWSHandler struct {
	feedService *service.FeedService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

func NewFeedWSHandler(feedService *service.FeedService, log zerolog.Logger, allowedOrigins []string) *FeedWSHandler {
	return &FeedWSHandler{
		feedService: feedService,
		log:         log.With().Str("component", "feed_ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// FeedStream godoc
// WS /ws/v1/feed?user_id= (or ?token=)
// Upgrades to WebSocket for the stateful swipe feed.
func (h *FeedWSHandler) FeedStream(c *gin.Context) {
	userID, ok := h.resolveUserID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int64("user_id", userID).Logger()
	wsLog.Info().Msg("Feed connected")

	var sessionID string
	defer func() {
		if sessionID != "" {
			h.feedService.CloseSession(sessionID)
		}
	}()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		ctx := c.Request.Context()
		switch msg.Action {
		case ws.ActionStart:
			sessionID = h.handleStart(ctx, conn, userID, sessionID, msg.Mode)
		case ws.ActionSwipe:
			h.handleSwipe(ctx, conn, sessionID, msg.Direction)
		case ws.ActionSetMode:
			h.handleSetMode(ctx, conn, sessionID, msg.Mode)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
		}
	}
}

// resolveUserID takes the user from validated claims when the WS auth
// middleware ran, falling back to the user_id query param.
func (h *FeedWSHandler) resolveUserID(c *gin.Context) (int64, bool) {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.UserID, true
	}
	id, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleStart opens a fresh session, replacing any previous one on this
// connection. Returns the live session id.
func (h *FeedWSHandler) handleStart(ctx context.Context, conn *websocket.Conn, userID int64, prevSessionID string, mode int) string {
	if prevSessionID != "" {
		h.feedService.CloseSession(prevSessionID)
	}

	state, err := h.feedService.StartSession(ctx, userID, mode)
	if err != nil {
		h.writeFeedError(conn, err)
		return ""
	}

	ws.WriteTyped(conn, ws.SessionResponse{Event: ws.EventSession, Data: state})
	return state.SessionID
}

func (h *FeedWSHandler) handleSwipe(ctx context.Context, conn *websocket.Conn, sessionID, direction string) {
	if sessionID == "" {
		ws.WriteError(conn, string(response.ErrSessionNotFound), "start a session first")
		return
	}

	result, err := h.feedService.Swipe(ctx, sessionID, direction)
	if err != nil {
		h.writeFeedError(conn, err)
		return
	}

	ws.WriteTyped(conn, ws.SwipeResultResponse{Event: ws.EventSwipeResult, Data: result})
}

func (h *FeedWSHandler) handleSetMode(ctx context.Context, conn *websocket.Conn, sessionID string, mode int) {
	if sessionID == "" {
		ws.WriteError(conn, string(response.ErrSessionNotFound), "start a session first")
		return
	}

	state, err := h.feedService.SetMode(ctx, sessionID, mode)
	if err != nil {
		h.writeFeedError(conn, err)
		return
	}

	ws.WriteTyped(conn, ws.SessionResponse{Event: ws.EventSession, Data: state})
}

func (h *FeedWSHandler) writeFeedError(conn *websocket.Conn, err error) {
	code := response.ErrFeedLoad
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		code = response.ErrInvalidArgument
	case errors.Is(err, service.ErrSessionNotFound):
		code = response.ErrSessionNotFound
	case errors.Is(err, service.ErrFeedExhausted):
		code = response.ErrFeedExhausted
	case errors.Is(err, service.ErrNotFound):
		code = response.ErrNotFound
	}
	ws.WriteError(conn, string(code), response.GetMessage(code))
}
