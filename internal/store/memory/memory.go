package memory

import (
	"context"
	"sync"
	"time"

	"bukustok/backend/internal/domain"
	"bukustok/backend/internal/store"
	"bukustok/backend/internal/xid"
)

// Store keeps whole documents in memory, one per shop. All reads and writes
// hand out deep clones so callers never alias internal state. Watchers get a
// clone per Set with non-blocking delivery; a slow watcher misses
// intermediate snapshots rather than stalling writers.
type Store struct {
	mu       sync.RWMutex
	docs     map[string]*domain.Document
	watchers map[string]map[int]chan *domain.Document
	nextSub  int
}

func New() *Store {
	return &Store{
		docs:     make(map[string]*domain.Document),
		watchers: make(map[string]map[int]chan *domain.Document),
	}
}

// NewSeeded builds a store with a small auto-parts register for dev mode and
// tests: three pages, a handful of entries, default settings.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	doc := domain.NewDocument()
	doc.Pages = []domain.Page{
		{ID: "page-oil", PageNo: 1, ItemName: "Engine Oil"},
		{ID: "page-brake", PageNo: 2, ItemName: "Brake Pads"},
		{ID: "page-mirror", PageNo: 3, ItemName: "Mirrors"},
	}
	doc.Entries = []domain.Entry{
		{ID: "entry-swift-oil", PageID: "page-oil", Car: "Swift", Qty: 12, LastUpdated: now},
		{ID: "entry-alto-oil", PageID: "page-oil", Car: "Alto", Qty: 7, LastUpdated: now},
		{ID: "entry-swift-brake", PageID: "page-brake", Car: "Swift", Qty: 5, LastUpdated: now},
		{ID: "entry-creta-brake", PageID: "page-brake", Car: "Creta", Qty: 9, LastUpdated: now},
		{ID: "entry-thar-mirror", PageID: "page-mirror", Car: "Thar", Qty: 3, LastUpdated: now},
		{ID: "entry-baleno-mirror", PageID: "page-mirror", Car: "Baleno", Qty: 6, LastUpdated: now},
	}
	doc.SalesEvents = []domain.SalesEvent{
		{ID: xid.New("evt"), TS: now.Add(-48 * time.Hour), Type: domain.EventSale, EntryID: "entry-swift-oil", PageID: "page-oil", Car: "Swift", Qty: 2},
		{ID: xid.New("evt"), TS: now.Add(-24 * time.Hour), Type: domain.EventSale, EntryID: "entry-swift-brake", PageID: "page-brake", Car: "Swift", Qty: 1},
		{ID: xid.New("evt"), TS: now.Add(-24 * time.Hour), Type: domain.EventRestock, EntryID: "entry-alto-oil", PageID: "page-oil", Car: "Alto", Qty: 5},
	}

	s.docs["main-shop"] = doc
	return s
}

func (s *Store) Get(_ context.Context, shopID string) (*domain.Document, error) {
	if shopID == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[shopID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *Store) Set(_ context.Context, shopID string, doc *domain.Document) error {
	if shopID == "" || doc == nil {
		return store.ErrInvalidInput
	}

	stored := doc.Clone()

	// Sends stay under the lock so a concurrent cancel can never close a
	// channel mid-send. Delivery is non-blocking, so holding the lock here
	// is bounded.
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[shopID] = stored
	for _, ch := range s.watchers[shopID] {
		select {
		case ch <- stored.Clone():
		default:
		}
	}
	return nil
}

func (s *Store) Watch(ctx context.Context, shopID string) (<-chan *domain.Document, func(), error) {
	if shopID == "" {
		return nil, nil, store.ErrInvalidInput
	}

	ch := make(chan *domain.Document, 8)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.watchers[shopID] == nil {
		s.watchers[shopID] = make(map[int]chan *domain.Document)
	}
	s.watchers[shopID][id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers[shopID], id)
			close(ch)
			s.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel, nil
}
