package sessions

import (
	"time"

	"github.com/omariomari2/wvs-102/internal/domain/scans"
)

// Role enum untuk chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn. Immutable once appended; append order defines
// chat-history order.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session binds a target URL, its latest scan result and the ongoing chat
// transcript under one externally supplied key. At most one scan result and
// one chat history exist per key at any instant.
type Session struct {
	Key          string        `json:"sessionKey"`
	URL          string        `json:"url"`
	ScanResult   *scans.Result `json:"scanResult,omitempty"`
	ChatHistory  []Message     `json:"chatHistory"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastActivity time.Time     `json:"lastActivity"`
}

// Reset clears scan result and chat history for a new target URL. Starting a
// fresh scan invalidates the prior conversation.
func (s *Session) Reset(url string) {
	s.URL = url
	s.ScanResult = nil
	s.ChatHistory = nil
}
