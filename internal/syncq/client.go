package syncq

import (
	"context"
	"log"
	"sync"
	"time"

	"bukustok/backend/internal/blob"
	"bukustok/backend/internal/domain"
	"bukustok/backend/internal/store"
)

const (
	pushAttempts          = 3
	pushBackoff           = 300 * time.Millisecond
	maxDocumentAttempts   = 5
	deleteAttemptsPerPass = 3
	defaultReplayInterval = 30 * time.Second
)

// Client wraps the document and object stores with retry, a durable outbox
// and a background replayer. A push that exhausts its attempts is queued
// locally and reported as saved-locally rather than failed.
type Client struct {
	docs   store.DocumentStore
	blobs  blob.Store
	outbox *Outbox

	interval  time.Duration
	sleep     func(time.Duration)
	reconnect chan struct{}

	mu           sync.Mutex
	lastReplayAt time.Time
	lastError    string
}

func NewClient(docs store.DocumentStore, blobs blob.Store, outbox *Outbox, interval time.Duration) *Client {
	if interval <= 0 {
		interval = defaultReplayInterval
	}
	return &Client{
		docs:      docs,
		blobs:     blobs,
		outbox:    outbox,
		interval:  interval,
		sleep:     time.Sleep,
		reconnect: make(chan struct{}, 1),
	}
}

// Push writes the whole document, retrying with linear backoff. Synced is
// true when the remote accepted the write; false means the document was
// queued in the outbox. An error is returned only when the outbox itself
// fails, which is a hard local failure.
func (c *Client) Push(ctx context.Context, shopID string, doc *domain.Document) (synced bool, err error) {
	var lastErr error
	for attempt := 1; attempt <= pushAttempts; attempt++ {
		if lastErr = c.docs.Set(ctx, shopID, doc); lastErr == nil {
			return true, nil
		}
		if attempt < pushAttempts {
			c.sleep(pushBackoff * time.Duration(attempt))
		}
	}

	log.Printf("[syncq] WARN: push failed after %d attempts, queueing locally: %v", pushAttempts, lastErr)
	c.setLastError(lastErr)
	if _, err := c.outbox.EnqueueDocument(ctx, shopID, doc); err != nil {
		return false, err
	}
	return false, nil
}

// DeleteObject removes a storage path with the same retry-then-queue
// pattern. Queued paths are deduplicated and replayed until they succeed.
func (c *Client) DeleteObject(ctx context.Context, path string) (synced bool, err error) {
	var lastErr error
	for attempt := 1; attempt <= pushAttempts; attempt++ {
		if lastErr = c.blobs.Delete(ctx, path); lastErr == nil {
			return true, nil
		}
		if attempt < pushAttempts {
			c.sleep(pushBackoff * time.Duration(attempt))
		}
	}

	log.Printf("[syncq] WARN: storage delete failed after %d attempts, queueing locally: %v", pushAttempts, lastErr)
	c.setLastError(lastErr)
	if err := c.outbox.EnqueueDelete(ctx, path); err != nil {
		return false, err
	}
	return false, nil
}

// TriggerReplay wakes the background replayer, typically on reconnect.
func (c *Client) TriggerReplay() {
	select {
	case c.reconnect <- struct{}{}:
	default:
	}
}

// Run replays the outbox periodically and on every reconnect trigger until
// ctx is done.
func (c *Client) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.reconnect:
		}
		c.ReplayPass(ctx)
	}
}

// ReplayPass retries every queued item once (documents) or up to three times
// (deletes). Documents are dropped after five cumulative failures; delete
// paths stay queued until they succeed.
func (c *Client) ReplayPass(ctx context.Context) {
	c.mu.Lock()
	c.lastReplayAt = time.Now().UTC()
	c.mu.Unlock()

	docs, err := c.outbox.ListDocuments(ctx)
	if err != nil {
		log.Printf("[syncq] WARN: list pending documents: %v", err)
		c.setLastError(err)
		return
	}
	for _, item := range docs {
		if err := c.docs.Set(ctx, item.ShopID, item.Doc); err == nil {
			if err := c.outbox.RemoveDocument(ctx, item.ID); err != nil {
				log.Printf("[syncq] WARN: remove replayed document %s: %v", item.ID, err)
			}
			continue
		} else {
			c.setLastError(err)
		}

		attempts, err := c.outbox.BumpDocumentAttempts(ctx, item.ID)
		if err != nil {
			log.Printf("[syncq] WARN: bump attempts for %s: %v", item.ID, err)
			continue
		}
		if attempts >= maxDocumentAttempts {
			log.Printf("[syncq] WARN: dropping queued document %s after %d attempts", item.ID, attempts)
			if err := c.outbox.RemoveDocument(ctx, item.ID); err != nil {
				log.Printf("[syncq] WARN: drop document %s: %v", item.ID, err)
			}
		}
	}

	deletes, err := c.outbox.ListDeletes(ctx)
	if err != nil {
		log.Printf("[syncq] WARN: list pending deletes: %v", err)
		c.setLastError(err)
		return
	}
	for _, item := range deletes {
		var lastErr error
		for attempt := 1; attempt <= deleteAttemptsPerPass; attempt++ {
			if lastErr = c.blobs.Delete(ctx, item.Path); lastErr == nil {
				break
			}
			if attempt < deleteAttemptsPerPass {
				c.sleep(pushBackoff * time.Duration(attempt))
			}
		}
		if lastErr != nil {
			c.setLastError(lastErr)
			continue
		}
		if err := c.outbox.RemoveDelete(ctx, item.Path); err != nil {
			log.Printf("[syncq] WARN: remove replayed delete %s: %v", item.Path, err)
		}
	}
}

// Status reports queue sizes and the last replay outcome.
func (c *Client) Status(ctx context.Context) (domain.SyncStatus, error) {
	documents, deletes, err := c.outbox.Counts(ctx)
	if err != nil {
		return domain.SyncStatus{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.SyncStatus{
		PendingDocuments: documents,
		PendingDeletes:   deletes,
		LastReplayAt:     c.lastReplayAt,
		LastError:        c.lastError,
	}, nil
}

func (c *Client) setLastError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.lastError = err.Error()
	c.mu.Unlock()
}

// MergeTransient overlays session-local bill state over an incoming remote
// snapshot: transient upload fields survive, and bills created locally but
// not yet visible remotely are retained by id-based set difference.
func MergeTransient(remote *domain.Document, sessionBills []domain.Bill) *domain.Document {
	if remote == nil {
		return nil
	}
	merged := remote.Clone()

	sessionByID := make(map[string]domain.Bill, len(sessionBills))
	for _, bill := range sessionBills {
		sessionByID[bill.ID] = bill
	}

	remoteIDs := make(map[string]bool, len(merged.Bills))
	for i, bill := range merged.Bills {
		remoteIDs[bill.ID] = true
		session, ok := sessionByID[bill.ID]
		if !ok {
			continue
		}
		merged.Bills[i].Uploading = session.Uploading
		merged.Bills[i].Progress = session.Progress
		merged.Bills[i].UploadFailed = session.UploadFailed
		if merged.Bills[i].Image == "" {
			merged.Bills[i].Image = session.Image
		}
	}

	for _, bill := range sessionBills {
		if !remoteIDs[bill.ID] {
			merged.Bills = append(merged.Bills, bill)
		}
	}

	return merged
}
