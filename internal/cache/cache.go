package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/mgpai22/subko/internal/logging"
	"github.com/mgpai22/subko/internal/translate"
)

const schema = `CREATE TABLE IF NOT EXISTS responses (
	key        TEXT PRIMARY KEY,
	model      TEXT NOT NULL,
	response   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Store keeps model responses keyed by request digest.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create responses table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached response for key, if any.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var response string
	err := s.db.QueryRowContext(ctx,
		`SELECT response FROM responses WHERE key = ?`, key,
	).Scan(&response)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query cache: %w", err)
	}
	return response, true, nil
}

func (s *Store) Put(ctx context.Context, key, model, response string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (key, model, response) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET response = excluded.response,
		 model = excluded.model, created_at = CURRENT_TIMESTAMP`,
		key, model, response,
	)
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Len returns the number of cached responses.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}

// Key digests every field that shapes the model's answer.
func Key(req translate.Request) string {
	h := sha256.New()
	for _, part := range []string{req.Model, req.SystemPrompt, req.UserPrompt, req.Payload} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Completer answers from the store when it can and records fresh answers.
type Completer struct {
	next   translate.Completer
	store  *Store
	logger *logging.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

func Wrap(store *Store, next translate.Completer, logger *logging.Logger) *Completer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Completer{next: next, store: store, logger: logger}
}

func (c *Completer) Complete(ctx context.Context, req translate.Request) (string, error) {
	key := Key(req)

	cached, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warnw("Cache lookup failed", "error", err)
	} else if ok {
		c.hits.Add(1)
		c.logger.Debugw("Cache hit", "key", key[:12])
		return cached, nil
	}
	c.misses.Add(1)

	response, err := c.next.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	if err := c.store.Put(ctx, key, req.Model, response); err != nil {
		c.logger.Warnw("Cache write failed", "error", err)
	}
	return response, nil
}

// Invalidate drops the stored answer for req so the next request for it
// reaches the model.
func (c *Completer) Invalidate(ctx context.Context, req translate.Request) error {
	return c.store.Delete(ctx, Key(req))
}

func (c *Completer) Validate(ctx context.Context) error {
	return c.next.Validate(ctx)
}

// Stats returns hit and miss counts since Wrap.
func (c *Completer) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
