package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
	"github.com/shoptalk-ai/shoptalk/catalog"
	"github.com/shoptalk-ai/shoptalk/chat"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Username, req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Username or email already exists")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load user")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.store.CreateSession(r.Context(), userID, req.SessionName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not create session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	sessions, err := s.store.SessionsForUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list sessions")
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, toSessionResponse(&sessions[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := s.store.AppendMessage(r.Context(), sessionID, contractx.Role(req.Role), req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not create message")
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponse(message))
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	messages, err := s.store.MessagesForSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list messages")
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleChat runs one turn end-to-end: verify the user, find or open the
// session, persist the user turn, hand history plus the new message to the
// assistant, persist its reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()

	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found. Please create a user first.")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load user")
		return
	}

	var session *chat.Session
	var err error
	if req.SessionID != nil {
		session, err = s.store.GetSession(ctx, *req.SessionID)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Session not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "could not load session")
			return
		}
	} else {
		session, err = s.store.CreateSession(ctx, req.UserID, "")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not create session")
			return
		}
	}

	// History is read before the new turn is appended so the assistant sees
	// the message exactly once.
	history, err := s.store.History(ctx, session.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	userMessage, err := s.store.AppendMessage(ctx, session.ID, contractx.RoleUser, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not save message")
		return
	}

	reply, err := s.responder.Converse(ctx, req.Message, history)
	if err != nil {
		log.Error().Err(err).Int64("session_id", session.ID).Msg("converse rejected turn")
		writeError(w, http.StatusInternalServerError, "Error processing chat")
		return
	}

	assistantMessage, err := s.store.AppendMessage(ctx, session.ID, contractx.RoleAssistant, reply)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not save reply")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		UserMessage:      toMessageResponse(userMessage),
		AssistantMessage: toMessageResponse(assistantMessage),
		SessionID:        session.ID,
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	lines, err := s.orders.OrderDetails(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, catalog.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load order")
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func toUserResponse(u *chat.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func toSessionResponse(s *chat.Session) sessionResponse {
	return sessionResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		SessionName: s.SessionName,
		CreatedAt:   s.CreatedAt,
		LastUpdated: s.LastUpdated,
	}
}

func toMessageResponse(m *chat.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
