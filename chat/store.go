package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

var ErrNotFound = errors.New("not found")

// Repository is the durable log of conversation turns. The orchestrator never
// touches it; the API layer reads history before a turn and appends the new
// user/assistant turns after.
type Repository struct {
	db  *bun.DB
	now func() time.Time
}

func NewRepository(db *bun.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("chat db is required")
	}
	return &Repository{db: db, now: time.Now}, nil
}

// CreateSchema creates the chat tables when they do not exist yet.
func (r *Repository) CreateSchema(ctx context.Context) error {
	models := []any{
		(*User)(nil),
		(*Session)(nil),
		(*Message)(nil),
	}
	for _, model := range models {
		if _, err := r.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create chat table for %T: %w", model, err)
		}
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, username, email string) (*User, error) {
	user := &User{
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		CreatedAt: r.now().UTC(),
	}
	if user.Username == "" || user.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", contractx.ErrValidation)
	}

	if _, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert chat user: %w", err)
	}
	return user, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	user := new(User)
	err := r.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select chat user: %w", err)
	}
	return user, nil
}

// CreateSession opens a new session for the user. A blank name gets the
// timestamped default.
func (r *Repository) CreateSession(ctx context.Context, userID int64, name string) (*Session, error) {
	now := r.now().UTC()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Chat Session " + now.Format("2006-01-02 15:04:05")
	}

	session := &Session{
		UserID:      userID,
		SessionName: name,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if _, err := r.db.NewInsert().Model(session).Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert chat session: %w", err)
	}
	return session, nil
}

func (r *Repository) GetSession(ctx context.Context, id int64) (*Session, error) {
	session := new(Session)
	err := r.db.NewSelect().Model(session).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select chat session: %w", err)
	}
	return session, nil
}

func (r *Repository) SessionsForUser(ctx context.Context, userID int64) ([]Session, error) {
	var sessions []Session
	err := r.db.NewSelect().Model(&sessions).
		Where("user_id = ?", userID).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select chat sessions: %w", err)
	}
	return sessions, nil
}

// AppendMessage persists one turn and touches the session's last_updated.
func (r *Repository) AppendMessage(ctx context.Context, sessionID int64, role contractx.Role, content string) (*Message, error) {
	switch role {
	case contractx.RoleUser, contractx.RoleAssistant, contractx.RoleSystem:
	default:
		return nil, fmt.Errorf("%w: unknown message role %q", contractx.ErrValidation, role)
	}

	now := r.now().UTC()
	message := &Message{
		SessionID: sessionID,
		Role:      string(role),
		Content:   content,
		CreatedAt: now,
	}
	if _, err := r.db.NewInsert().Model(message).Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}

	_, err := r.db.NewUpdate().Model((*Session)(nil)).
		Set("last_updated = ?", now).
		Where("id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("touch chat session: %w", err)
	}
	return message, nil
}

func (r *Repository) MessagesForSession(ctx context.Context, sessionID int64) ([]Message, error) {
	var messages []Message
	err := r.db.NewSelect().Model(&messages).
		Where("session_id = ?", sessionID).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select chat messages: %w", err)
	}
	return messages, nil
}

// History returns the session's messages as orchestrator turns, oldest first.
func (r *Repository) History(ctx context.Context, sessionID int64) ([]contractx.Turn, error) {
	messages, err := r.MessagesForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	turns := make([]contractx.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, contractx.Turn{
			Role:    contractx.Role(m.Role),
			Content: m.Content,
		})
	}
	return turns, nil
}
