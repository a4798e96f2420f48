package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	domain "github.com/omariomari2/wvs-102/internal/domain/sessions"
)

// SessionRepository persists each session as one JSON document keyed by
// session key. The document layout is not a compatibility surface.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Schema:
//
//	CREATE TABLE IF NOT EXISTS scan_sessions (
//	  session_key   VARCHAR(64) PRIMARY KEY,
//	  doc           LONGTEXT NOT NULL,
//	  last_activity DATETIME NOT NULL
//	);

func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO scan_sessions (session_key, doc, last_activity)
VALUES (?,?,?)
ON DUPLICATE KEY UPDATE
 doc=VALUES(doc),
 last_activity=VALUES(last_activity);
`
	_, err = r.db.ExecContext(ctx, q, s.Key, doc, s.LastActivity.UTC())
	return err
}

func (r *SessionRepository) Load(ctx context.Context, key string) (*domain.Session, error) {
	const q = `SELECT doc FROM scan_sessions WHERE session_key=? LIMIT 1;`

	var doc []byte
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	const q = `DELETE FROM scan_sessions WHERE last_activity < ?;`
	res, err := r.db.ExecContext(ctx, q, before.UTC())
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}
