package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"cortex-ai-be/internal/dto"
	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/internal/pkg/serverutils"
	"cortex-ai-be/internal/service"
	internalWS "cortex-ai-be/internal/websocket"
	"cortex-ai-be/pkg/apperror"
	"cortex-ai-be/pkg/contextref"
	"cortex-ai-be/pkg/mention"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type ComposerHandler struct {
	contextService service.IContextService
	hub            *internalWS.Hub
	jwtSecret      string
	logger         logger.ILogger
}

func NewComposerHandler(contextService service.IContextService, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *ComposerHandler {
	return &ComposerHandler{
		contextService: contextService,
		hub:            hub,
		jwtSecret:      jwtSecret,
		logger:         log,
	}
}

// ServeWs authenticates the handshake and runs a composer session on the socket.
// The token comes from the "token" query param (browsers) or the Authorization header.
func (h *ComposerHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			tokenStr = authHeader[7:]
		}
	}

	userID, err := serverutils.ParseUserToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("ComposerHandler", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		session := newComposerSession(userID, h.contextService, h.logger)
		h.logger.Info("ComposerHandler", "Starting composer session", map[string]interface{}{"user_id": userID})

		internalWS.ServeWs(h.hub, conn, userID, func(ctx context.Context, client *internalWS.Client, data []byte) {
			session.Handle(ctx, data, client.Reply)
		})

		session.tracker.Cancel()
		h.logger.Info("ComposerHandler", "Composer session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

type composerRequest struct {
	Type           string `json:"type"`
	Buffer         string `json:"buffer"`
	Caret          int    `json:"caret"`
	ConversationId string `json:"conversation_id"`
	EntityType     string `json:"entity_type"`
	EntityId       string `json:"entity_id"`
}

type mentionFrame struct {
	Type          string `json:"type"`
	Active        bool   `json:"active"`
	TriggerOffset int    `json:"trigger_offset"`
	Query         string `json:"query,omitempty"`
}

type suggestionsFrame struct {
	Type  string      `json:"type"`
	Query string      `json:"query"`
	Items interface{} `json:"items"`
}

type selectedFrame struct {
	Type       string                    `json:"type"`
	Buffer     string                    `json:"buffer"`
	Caret      int                       `json:"caret"`
	References []dto.ContextReferenceDTO `json:"references"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// composerSession holds the mention state of one socket.
type composerSession struct {
	userID         uuid.UUID
	contextService service.IContextService
	tracker        *mention.Tracker
	logger         logger.ILogger

	// emitMu orders tracker changes with the frames that report them, so a
	// suggestions frame never follows a mention frame for a newer query.
	emitMu  sync.Mutex
	pending sync.WaitGroup
}

func newComposerSession(userID uuid.UUID, contextService service.IContextService, log logger.ILogger) *composerSession {
	return &composerSession{
		userID:         userID,
		contextService: contextService,
		tracker:        mention.NewTracker(),
		logger:         log,
	}
}

// Handle processes one inbound frame. Suggestion lookups run in the background
// and are only replied when they still match the latest scan.
func (s *composerSession) Handle(ctx context.Context, data []byte, reply func([]byte)) {
	var req composerRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.replyError(reply, apperror.Validation("malformed frame"))
		return
	}

	switch req.Type {
	case "scan":
		s.scan(ctx, req, reply)
	case "select":
		s.selectEntity(ctx, req, reply)
	case "ping":
		s.send(reply, map[string]string{"type": "pong"})
	default:
		s.replyError(reply, apperror.Validation("unknown frame type"))
	}
}

func (s *composerSession) scan(ctx context.Context, req composerRequest, reply func([]byte)) {
	state := mention.Scan(req.Buffer, req.Caret)
	if !state.Active {
		s.emitMu.Lock()
		s.tracker.Cancel()
		s.send(reply, mentionFrame{Type: "mention", Active: false})
		s.emitMu.Unlock()
		return
	}

	s.emitMu.Lock()
	ticket := s.tracker.Begin(state.Query)
	s.send(reply, mentionFrame{
		Type:          "mention",
		Active:        true,
		TriggerOffset: state.TriggerOffset,
		Query:         state.Query,
	})
	s.emitMu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		res, err := s.contextService.Search(ctx, s.userID, &dto.SearchContextRequest{
			Query:          state.Query,
			ConversationId: req.ConversationId,
		})

		s.emitMu.Lock()
		defer s.emitMu.Unlock()
		if !s.tracker.Current(ticket) {
			return
		}
		if err != nil {
			s.replyError(reply, err)
			return
		}
		s.send(reply, suggestionsFrame{Type: "suggestions", Query: ticket.Query, Items: res.Items})
	}()
}

func (s *composerSession) selectEntity(ctx context.Context, req composerRequest, reply func([]byte)) {
	state := mention.Scan(req.Buffer, req.Caret)
	if !state.Active {
		s.replyError(reply, apperror.Validation("no active mention at caret"))
		return
	}

	conversationId, err := uuid.Parse(req.ConversationId)
	if err != nil {
		s.replyError(reply, apperror.Validation("invalid conversation id"))
		return
	}
	ref, err := contextref.Parse(req.EntityType, req.EntityId)
	if err != nil {
		s.replyError(reply, apperror.Validation(err.Error()))
		return
	}
	if s.contextService.Attached(conversationId, ref) {
		s.replyError(reply, apperror.Validation("already attached"))
		return
	}

	refs, err := s.contextService.AddReference(ctx, s.userID, conversationId, &dto.AddContextReferenceRequest{
		EntityType: string(ref.Type()),
		EntityId:   ref.ID(),
	})
	if err != nil {
		s.replyError(reply, err)
		return
	}

	// Insert the entity's stored title.
	title := ""
	for _, r := range refs {
		if r.EntityType == string(ref.Type()) && r.EntityId == ref.ID() {
			title = r.Title
			break
		}
	}

	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.tracker.Cancel()
	buffer, caret := mention.Select(req.Buffer, state, req.Caret, title)
	s.send(reply, selectedFrame{Type: "selected", Buffer: buffer, Caret: caret, References: refs})
}

func (s *composerSession) replyError(reply func([]byte), err error) {
	message := "internal server error"
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
		message = appErr.Message
	} else {
		s.logger.Error("ComposerHandler", "Composer request failed", map[string]interface{}{
			"user_id": s.userID,
			"error":   err.Error(),
		})
	}
	s.send(reply, errorFrame{Type: "error", Code: serverutils.StatusOf(err), Message: message})
}

func (s *composerSession) send(reply func([]byte), frame interface{}) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	reply(data)
}
