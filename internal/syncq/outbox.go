package syncq

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"bukustok/backend/internal/domain"
	"bukustok/backend/internal/xid"
)

const outboxSchemaVersion = 1

// Outbox is the durable local queue for writes and deletes that exhausted
// their retries. SQLite in WAL mode; one writer connection.
type Outbox struct {
	db *sql.DB
}

type PendingDocument struct {
	ID       string
	ShopID   string
	Doc      *domain.Document
	QueuedAt time.Time
	Attempts int
}

type PendingDelete struct {
	Path     string
	QueuedAt time.Time
}

func OpenOutbox(path string) (*Outbox, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect outbox: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if err := applyOutboxSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Outbox{db: db}, nil
}

func applyOutboxSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pending_documents (
			id        TEXT PRIMARY KEY,
			shop_id   TEXT NOT NULL,
			doc       TEXT NOT NULL,
			queued_at INTEGER NOT NULL,
			attempts  INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS pending_deletes (
			path      TEXT PRIMARY KEY,
			queued_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("apply outbox schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < outboxSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", outboxSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

func (o *Outbox) Close() error {
	if o.db == nil {
		return nil
	}
	return o.db.Close()
}

func (o *Outbox) EnqueueDocument(ctx context.Context, shopID string, doc *domain.Document) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	id := xid.New("pw")
	_, err = o.db.ExecContext(ctx, `
		INSERT INTO pending_documents (id, shop_id, doc, queued_at, attempts)
		VALUES (?, ?, ?, ?, 0)
	`, id, shopID, string(payload), time.Now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("enqueue document: %w", err)
	}
	return id, nil
}

// ListDocuments returns queued documents oldest first.
func (o *Outbox) ListDocuments(ctx context.Context) ([]PendingDocument, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT id, shop_id, doc, queued_at, attempts
		FROM pending_documents
		ORDER BY queued_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PendingDocument, 0, 8)
	for rows.Next() {
		var item PendingDocument
		var raw string
		var queuedAt int64
		if err := rows.Scan(&item.ID, &item.ShopID, &raw, &queuedAt, &item.Attempts); err != nil {
			return nil, err
		}
		var doc domain.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, err
		}
		item.Doc = &doc
		item.QueuedAt = time.UnixMilli(queuedAt)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (o *Outbox) RemoveDocument(ctx context.Context, id string) error {
	_, err := o.db.ExecContext(ctx, `DELETE FROM pending_documents WHERE id = ?`, id)
	return err
}

// BumpDocumentAttempts increments and returns the cumulative attempt count.
func (o *Outbox) BumpDocumentAttempts(ctx context.Context, id string) (int, error) {
	_, err := o.db.ExecContext(ctx, `
		UPDATE pending_documents SET attempts = attempts + 1 WHERE id = ?
	`, id)
	if err != nil {
		return 0, err
	}
	var attempts int
	err = o.db.QueryRowContext(ctx, `
		SELECT attempts FROM pending_documents WHERE id = ?
	`, id).Scan(&attempts)
	return attempts, err
}

// EnqueueDelete records a storage path for later deletion. Paths are
// deduplicated: re-queuing an already pending path is a no-op.
func (o *Outbox) EnqueueDelete(ctx context.Context, path string) error {
	_, err := o.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO pending_deletes (path, queued_at)
		VALUES (?, ?)
	`, path, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("enqueue delete: %w", err)
	}
	return nil
}

func (o *Outbox) ListDeletes(ctx context.Context) ([]PendingDelete, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT path, queued_at FROM pending_deletes ORDER BY queued_at, path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PendingDelete, 0, 8)
	for rows.Next() {
		var item PendingDelete
		var queuedAt int64
		if err := rows.Scan(&item.Path, &queuedAt); err != nil {
			return nil, err
		}
		item.QueuedAt = time.UnixMilli(queuedAt)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (o *Outbox) RemoveDelete(ctx context.Context, path string) error {
	_, err := o.db.ExecContext(ctx, `DELETE FROM pending_deletes WHERE path = ?`, path)
	return err
}

// Counts reports the queue sizes for observability.
func (o *Outbox) Counts(ctx context.Context) (documents int, deletes int, err error) {
	if err = o.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_documents`).Scan(&documents); err != nil {
		return 0, 0, err
	}
	if err = o.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_deletes`).Scan(&deletes); err != nil {
		return 0, 0, err
	}
	return documents, deletes, nil
}
