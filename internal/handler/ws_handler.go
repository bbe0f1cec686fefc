package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	ws "github.com/epsilon-academy/academy-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
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

// WSHandler handles live-class presence sockets.
type WSHandler struct {
	liveClassService *service.LiveClassService
	hub              *ws.Hub
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(liveClassService *service.LiveClassService, hub *ws.Hub, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		liveClassService: liveClassService,
		hub:              hub,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// LiveClassPresence godoc
// WS /ws/live-classes/:id
// Each connection counts as one participant until it closes.
func (h *WSHandler) LiveClassPresence(c *gin.Context) {
	id := middleware.MustIdentity(c)

	liveClassID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	lc, err := h.liveClassService.Authorize(c.Request.Context(), id, liveClassID)
	if err != nil {
		writeError(c, err)
		return
	}
	if lc.MaxParticipants > 0 && h.hub.Count(lc.ID) >= lc.MaxParticipants {
		response.Fail(c, http.StatusConflict, response.ErrLiveClassFull)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", id.UserID.String()).
		Str("live_class_id", lc.ID.String()).
		Logger()

	member, err := h.hub.Join(lc.ID, lc.MaxParticipants, id.UserID, conn)
	if err != nil {
		if errors.Is(err, ws.ErrRoomFull) {
			_ = ws.WriteError(conn, string(response.ErrLiveClassFull), response.GetMessage(response.ErrLiveClassFull))
			_ = ws.Close(conn, ws.CloseLiveClassFull, string(response.ErrLiveClassFull))
			wsLog.Info().Msg("Connection refused, live class full")
			return
		}
		wsLog.Error().Err(err).Msg("Join failed")
		return
	}
	defer h.hub.Leave(member)

	wsLog.Info().Msg("Participant connected")

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			_ = member.Send(ws.PongResponse{Event: ws.EventPong})
		default:
			_ = member.Send(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)})
		}
	}
}
