package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	domain "github.com/omariomari2/wvs-102/internal/domain/sessions"
)

// Repository is the in-memory session store used for tests and the default
// run mode. Sessions are kept as serialized blobs so loads hand out
// independent copies, matching the durable backends.
type Repository struct {
	mu   sync.RWMutex
	docs map[string][]byte
	last map[string]time.Time
}

func New() *Repository {
	return &Repository{
		docs: make(map[string][]byte),
		last: make(map[string]time.Time),
	}
}

func (r *Repository) Load(ctx context.Context, key string) (*domain.Session, error) {
	r.mu.RLock()
	doc, ok := r.docs[key]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	var s domain.Session
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Save(ctx context.Context, s *domain.Session) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.docs[s.Key] = doc
	r.last[s.Key] = s.LastActivity
	r.mu.Unlock()
	return nil
}

func (r *Repository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key, last := range r.last {
		if last.Before(before) {
			delete(r.docs, key)
			delete(r.last, key)
			n++
		}
	}
	return n, nil
}

func (r *Repository) Ping(ctx context.Context) error { return nil }
