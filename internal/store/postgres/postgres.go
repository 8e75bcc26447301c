package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"bukustok/backend/internal/domain"
	"bukustok/backend/internal/store"
)

// Store persists one JSONB document per shop. The whole document is replaced
// on every Set, matching the register's read-modify-write model.
type Store struct {
	db           *sql.DB
	pollInterval time.Duration
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, pollInterval: 2 * time.Second}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS shop_documents (
			shop_id    text PRIMARY KEY,
			doc        jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (s *Store) Get(ctx context.Context, shopID string) (*domain.Document, error) {
	if shopID == "" {
		return nil, store.ErrInvalidInput
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT doc FROM shop_documents WHERE shop_id = $1
	`, shopID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) Set(ctx context.Context, shopID string, doc *domain.Document) error {
	if shopID == "" || doc == nil {
		return store.ErrInvalidInput
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shop_documents (shop_id, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (shop_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, shopID, payload)
	return err
}

// Watch polls updated_at and emits a fresh snapshot whenever it moves.
// Polling keeps the implementation on the plain pgx driver; the register
// tolerates snapshot latency of a couple of seconds.
func (s *Store) Watch(ctx context.Context, shopID string) (<-chan *domain.Document, func(), error) {
	if shopID == "" {
		return nil, nil, store.ErrInvalidInput
	}

	ch := make(chan *domain.Document, 8)
	watchCtx, stop := context.WithCancel(ctx)

	var once sync.Once
	cancel := func() {
		once.Do(stop)
	}

	go func() {
		defer close(ch)

		var lastSeen time.Time
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
			}

			var raw []byte
			var updatedAt time.Time
			err := s.db.QueryRowContext(watchCtx, `
				SELECT doc, updated_at FROM shop_documents WHERE shop_id = $1
			`, shopID).Scan(&raw, &updatedAt)
			if err != nil {
				continue
			}
			if !updatedAt.After(lastSeen) {
				continue
			}

			var doc domain.Document
			if err := json.Unmarshal(raw, &doc); err != nil {
				continue
			}
			lastSeen = updatedAt

			select {
			case ch <- &doc:
			case <-watchCtx.Done():
				return
			}
		}
	}()

	return ch, cancel, nil
}
