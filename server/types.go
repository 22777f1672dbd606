package server

import "time"

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type createSessionRequest struct {
	SessionName string `json:"session_name,omitempty"`
}

type sessionResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	SessionName string    `json:"session_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

type createMessageRequest struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type messageResponse struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type chatRequest struct {
	Message   string `json:"message"`
	UserID    int64  `json:"user_id"`
	SessionID *int64 `json:"session_id,omitempty"`
}

type chatResponse struct {
	UserMessage      messageResponse `json:"user_message"`
	AssistantMessage messageResponse `json:"assistant_message"`
	SessionID        int64           `json:"session_id"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
