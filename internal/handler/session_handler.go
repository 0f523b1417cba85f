package handler

import (
	"context"
	"encoding/json"
	"errors"

	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/internal/pkg/serverutils"
	"voice-agent-be/internal/service"
	internalWS "voice-agent-be/internal/websocket"
	"voice-agent-be/pkg/interaction"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type SessionHandler struct {
	service   service.ISessionService
	jwtSecret string
	logger    logger.ILogger
}

func NewSessionHandler(service service.ISessionService, jwtSecret string, log logger.ILogger) *SessionHandler {
	return &SessionHandler{
		service:   service,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs upgrades the request and runs a live voice session over it.
func (h *SessionHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, ok := h.service.Active(); ok {
		return serverutils.NewConflictError(constant.SessionBusyMessage)
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.serve(conn)
	})(c)
}

func (h *SessionHandler) serve(conn *websocket.Conn) {
	ctx := context.Background()
	client := internalWS.NewClient(conn, h.logger)

	session, err := h.service.Open(ctx, internalWS.NewDevice(client))
	if err != nil {
		h.logger.Warn("SessionHandler", "Failed to open session", map[string]interface{}{"error": err.Error()})
		reject(conn, err)
		return
	}

	id := session.ID
	h.logger.Info("SessionHandler", "Starting WebSocket session", map[string]interface{}{"session_id": id.String()})
	client.Push(internalWS.Frame{Type: internalWS.FrameSession, SessionID: id.String(), State: session.Coordinator.State().String()})

	internalWS.ServeSession(client, session.Coordinator, func() { h.service.Touch(ctx, id) })

	if err := h.service.Close(ctx, id); err != nil && !errors.Is(err, service.ErrSessionNotFound) {
		h.logger.Warn("SessionHandler", "Failed to close session", map[string]interface{}{"session_id": id.String(), "error": err.Error()})
	}
	h.logger.Info("SessionHandler", "WebSocket session ended", map[string]interface{}{"session_id": id.String()})
}

func reject(conn *websocket.Conn, err error) {
	code := websocket.CloseInternalServerErr
	if errors.Is(err, service.ErrSessionBusy) {
		code = websocket.CloseTryAgainLater
	}
	if data, mErr := json.Marshal(internalWS.ErrorFrame(err)); mErr == nil {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, err.Error()))
	_ = conn.Close()
}

// GetActive returns the live session with its transcript.
func (h *SessionHandler) GetActive(c *fiber.Ctx) error {
	session, ok := h.service.Active()
	if !ok {
		return serverutils.NewNotFoundError(constant.SessionNotFoundMessage)
	}

	res, err := h.service.Describe(c.UserContext(), session.ID)
	if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, interaction.ErrStopped) {
		return serverutils.NewNotFoundError(constant.SessionNotFoundMessage)
	}
	if err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Active session", res))
}

// Close ends a live session. The transcript is discarded with it.
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("Invalid session ID")
	}

	if err := h.service.Close(c.UserContext(), id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return serverutils.NewNotFoundError(constant.SessionNotFoundMessage)
		}
		return err
	}

	return c.JSON(serverutils.SuccessResponse[any]("Session closed", nil))
}

// RegisterRoutes registers the session routes.
func (h *SessionHandler) RegisterRoutes(router fiber.Router) {
	session := router.Group("/session")
	session.Use(serverutils.JwtMiddleware(h.jwtSecret))
	session.Get("/ws", h.ServeWs)
	session.Get("/", h.GetActive)
	session.Delete("/:id", h.Close)
}
