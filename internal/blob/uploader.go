package blob

import (
	"context"
	"sync"
)

const defaultUploadSlots = 3

// Uploader throttles concurrent uploads with a counter and a FIFO wait
// queue: when all slots are busy, later uploads park until a slot frees, in
// arrival order.
type Uploader struct {
	store Store

	mu      sync.Mutex
	active  int
	slots   int
	waiters []chan struct{}
}

// ProgressFunc receives an upload's completion percentage, 0 to 100.
type ProgressFunc func(percent int)

func NewUploader(store Store) *Uploader {
	return &Uploader{store: store, slots: defaultUploadSlots}
}

func (u *Uploader) acquire(ctx context.Context) error {
	u.mu.Lock()
	if u.active < u.slots {
		u.active++
		u.mu.Unlock()
		return nil
	}
	wait := make(chan struct{})
	u.waiters = append(u.waiters, wait)
	u.mu.Unlock()

	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		u.abandon(wait)
		return ctx.Err()
	}
}

func (u *Uploader) abandon(wait chan struct{}) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, w := range u.waiters {
		if w == wait {
			u.waiters = append(u.waiters[:i], u.waiters[i+1:]...)
			return
		}
	}
	// The slot was already handed over; pass it on.
	u.releaseLocked()
}

func (u *Uploader) release() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.releaseLocked()
}

func (u *Uploader) releaseLocked() {
	if len(u.waiters) > 0 {
		next := u.waiters[0]
		u.waiters = u.waiters[1:]
		close(next)
		return
	}
	if u.active > 0 {
		u.active--
	}
}

// Active reports the number of uploads currently holding a slot.
func (u *Uploader) Active() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.active
}

// Pending reports the number of uploads waiting for a slot.
func (u *Uploader) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.waiters)
}

// Upload stores data under key once a slot is free. Progress is reported at
// 0 before the transfer and 100 after it completes.
func (u *Uploader) Upload(ctx context.Context, key string, data []byte, contentType string, progress ProgressFunc) (string, error) {
	if err := u.acquire(ctx); err != nil {
		return "", err
	}
	defer u.release()

	if progress != nil {
		progress(0)
	}
	url, err := u.store.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}
	if progress != nil {
		progress(100)
	}
	return url, nil
}
