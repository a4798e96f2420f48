package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	scandomain "github.com/omariomari2/wvs-102/internal/domain/scans"
	domain "github.com/omariomari2/wvs-102/internal/domain/sessions"
)

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Responder produces the assistant reply for a chat turn. Implementations
// must always return text; upstream failures are handled inside.
type Responder interface {
	Reply(ctx context.Context, userText string, result *scandomain.Result, history []domain.Message) string
}

// Service is the keyed single-writer session store. All mutating operations
// on one session key are serialized through a per-key mutex; operations on
// different keys proceed in parallel. No other component writes session
// state directly.
type Service struct {
	Repo  domain.Repository
	Chat  Responder
	Clock Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(repo domain.Repository, chat Responder, clock Clock) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		Repo:  repo,
		Chat:  chat,
		Clock: clock,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Service) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// CreateOrLoad loads the session for key, creating it when absent. A changed
// target URL resets scan result and chat history: a fresh scan invalidates
// the prior conversation.
func (s *Service) CreateOrLoad(ctx context.Context, key, url string) (*domain.Session, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	now := s.Clock.Now()
	sess, err := s.Repo.Load(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sess = &domain.Session{Key: key, URL: url, CreatedAt: now}
	case err != nil:
		return nil, err
	case sess.URL != url:
		sess.Reset(url)
	}
	sess.LastActivity = now

	if err := s.Repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ApplyScanResult posts a terminal scan result into the session. A result
// arriving after the session is gone is tolerated silently: the scan's async
// completion has nowhere to land and that is fine.
func (s *Service) ApplyScanResult(ctx context.Context, key string, res *scandomain.Result) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	sess, err := s.Repo.Load(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	sess.ScanResult = res
	sess.LastActivity = s.Clock.Now()
	return s.Repo.Save(ctx, sess)
}

// AppendChat appends the user message, obtains the assistant reply and
// appends it, all under the session's write lock so concurrent chat turns
// never interleave.
func (s *Service) AppendChat(ctx context.Context, key, userText string) (reply string, messageID string, err error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	sess, err := s.Repo.Load(ctx, key)
	if err != nil {
		return "", "", err
	}

	now := s.Clock.Now()
	sess.ChatHistory = append(sess.ChatHistory, domain.Message{
		ID:        uuid.New().String(),
		Role:      domain.RoleUser,
		Content:   userText,
		Timestamp: now,
	})

	reply = s.Chat.Reply(ctx, userText, sess.ScanResult, sess.ChatHistory)

	assistant := domain.Message{
		ID:        uuid.New().String(),
		Role:      domain.RoleAssistant,
		Content:   reply,
		Timestamp: s.Clock.Now(),
	}
	sess.ChatHistory = append(sess.ChatHistory, assistant)
	sess.LastActivity = assistant.Timestamp

	if err := s.Repo.Save(ctx, sess); err != nil {
		return "", "", err
	}
	return reply, assistant.ID, nil
}

// Status returns the session for key. Reads also bump lastActivity.
func (s *Service) Status(ctx context.Context, key string) (*domain.Session, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	sess, err := s.Repo.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.LastActivity = s.Clock.Now()
	if err := s.Repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// History returns the chat transcript for key.
func (s *Service) History(ctx context.Context, key string) ([]domain.Message, error) {
	sess, err := s.Status(ctx, key)
	if err != nil {
		return nil, err
	}
	return sess.ChatHistory, nil
}

// PurgeIdle removes sessions idle for longer than ttl. Host housekeeping
// policy, not a core state transition.
func (s *Service) PurgeIdle(ctx context.Context, ttl time.Duration) (int, error) {
	return s.Repo.DeleteIdle(ctx, s.Clock.Now().Add(-ttl))
}

// Ping reports backing-store health.
func (s *Service) Ping(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}
