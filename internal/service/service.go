package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bukustok/backend/internal/blob"
	"bukustok/backend/internal/domain"
	"bukustok/backend/internal/insight"
	"bukustok/backend/internal/search"
	"bukustok/backend/internal/store"
	"bukustok/backend/internal/syncq"
	"bukustok/backend/internal/xid"
)

var (
	ErrInvalidPIN  = errors.New("invalid pin")
	ErrShopBlocked = errors.New("shop is blocked")
)

// The stored product password always works; "0000" is the factory fallback
// and "123456" the support master override.
const (
	fallbackPIN = "0000"
	masterPIN   = "123456"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Service owns the register for one shop: the whole-document mutations, the
// quantity buffer with its PIN-gated commit, search, bills and the derived
// sales-event log. All writes go through the sync client, so a network
// outage degrades to a queued local write instead of a failure.
type Service struct {
	docs     store.DocumentStore
	sync     *syncq.Client
	engine   *search.Engine
	uploader *blob.Uploader
	shopID   string
	tabID    string

	mu           sync.Mutex
	buffer       map[string]int
	sessionBills map[string]domain.Bill
	indexed      bool
	pin          string
	pinKnown     bool
}

func New(docs store.DocumentStore, syncClient *syncq.Client, engine *search.Engine, uploader *blob.Uploader, shopID string) *Service {
	if shopID == "" {
		shopID = "main-shop"
	}

	return &Service{
		docs:         docs,
		sync:         syncClient,
		engine:       engine,
		uploader:     uploader,
		shopID:       shopID,
		tabID:        uuid.NewString(),
		buffer:       make(map[string]int),
		sessionBills: make(map[string]domain.Bill),
	}
}

// Run keeps the search index aligned with incoming remote snapshots until
// ctx is done.
func (s *Service) Run(ctx context.Context) {
	snapshots, cancel, err := s.docs.Watch(ctx, s.shopID)
	if err != nil {
		log.Printf("[service] WARN: watch unavailable: %v", err)
		return
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case doc, ok := <-snapshots:
			if !ok {
				return
			}
			s.noteDoc(doc)
			s.engine.Rebuild(activeEntries(doc))
		}
	}
}

// loadDoc reads the shop document, creating the default one on first use.
func (s *Service) loadDoc(ctx context.Context) (*domain.Document, error) {
	doc, err := s.docs.Get(ctx, s.shopID)
	if err == nil {
		s.mu.Lock()
		warm := !s.indexed
		s.indexed = true
		s.pin = doc.Settings.ProductPassword
		s.pinKnown = true
		s.mu.Unlock()
		if warm {
			s.engine.Rebuild(activeEntries(doc))
		}
		return doc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	doc = domain.NewDocument()
	if _, err := s.sync.Push(ctx, s.shopID, doc); err != nil {
		return nil, err
	}
	s.noteDoc(doc)
	s.engine.Rebuild(nil)
	return doc, nil
}

// noteDoc records session state derived from a document the store has
// confirmed: the index is warm and the stored PIN is known.
func (s *Service) noteDoc(doc *domain.Document) {
	s.mu.Lock()
	s.indexed = true
	s.pin = doc.Settings.ProductPassword
	s.pinKnown = true
	s.mu.Unlock()
}

func (s *Service) persist(ctx context.Context, doc *domain.Document) (bool, error) {
	synced, err := s.sync.Push(ctx, s.shopID, doc)
	if err != nil {
		return false, err
	}
	s.noteDoc(doc)
	s.engine.Rebuild(activeEntries(doc))
	return synced, nil
}

func guardMutable(doc *domain.Document) error {
	if doc.AppStatus == domain.AppStatusBlocked {
		return ErrShopBlocked
	}
	return nil
}

// activeEntries filters out orphans: an entry whose page is gone is treated
// as deleted everywhere.
func activeEntries(doc *domain.Document) []domain.Entry {
	pageIDs := make(map[string]bool, len(doc.Pages))
	for _, page := range doc.Pages {
		pageIDs[page.ID] = true
	}
	out := make([]domain.Entry, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		if pageIDs[entry.PageID] {
			out = append(out, entry)
		}
	}
	return out
}

// renumberPages restores the dense 1..N ordering after any structural
// change, preserving the current relative order.
func renumberPages(doc *domain.Document) {
	sort.SliceStable(doc.Pages, func(i, j int) bool {
		return doc.Pages[i].PageNo < doc.Pages[j].PageNo
	})
	for i := range doc.Pages {
		doc.Pages[i].PageNo = i + 1
	}
}

// Document returns the merged session view: orphaned entries filtered and
// transient bill state overlaid.
func (s *Service) Document(ctx context.Context) (*domain.Document, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	session := make([]domain.Bill, 0, len(s.sessionBills))
	for _, bill := range s.sessionBills {
		session = append(session, bill)
	}
	s.mu.Unlock()
	sort.Slice(session, func(i, j int) bool { return session[i].ID < session[j].ID })

	merged := syncq.MergeTransient(doc, session)
	merged.Entries = activeEntries(merged)
	return merged, nil
}

func (s *Service) Pages(ctx context.Context) ([]domain.Page, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Pages, nil
}

func (s *Service) Entries(ctx context.Context) ([]domain.Entry, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return nil, err
	}
	return activeEntries(doc), nil
}

func (s *Service) AddPage(ctx context.Context, req domain.PageCreateRequest) (domain.Page, error) {
	name := strings.TrimSpace(req.ItemName)
	if name == "" {
		return domain.Page{}, store.ErrInvalidInput
	}

	doc, err := s.loadDoc(ctx)
	if err != nil {
		return domain.Page{}, err
	}
	if err := guardMutable(doc); err != nil {
		return domain.Page{}, err
	}

	page := domain.Page{
		ID:       xid.New("page"),
		PageNo:   len(doc.Pages) + 1,
		ItemName: name,
	}
	doc.Pages = append(doc.Pages, page)
	renumberPages(doc)

	if _, err := s.persist(ctx, doc); err != nil {
		return domain.Page{}, err
	}
	return page, nil
}

func (s *Service) RenamePage(ctx context.Context, pageID string, req domain.PageRenameRequest) (domain.Page, error) {
	name := strings.TrimSpace(req.ItemName)
	if name == "" {
		return domain.Page{}, store.ErrInvalidInput
	}

	doc, err := s.loadDoc(ctx)
	if err != nil {
		return domain.Page{}, err
	}
	if err := guardMutable(doc); err != nil {
		return domain.Page{}, err
	}

	idx := pageIndex(doc, pageID)
	if idx < 0 {
		return domain.Page{}, store.ErrNotFound
	}
	doc.Pages[idx].ItemName = name

	if _, err := s.persist(ctx, doc); err != nil {
		return domain.Page{}, err
	}
	return doc.Pages[idx], nil
}

// MovePage shifts a page to newPos (1-based) and renumbers the rest.
func (s *Service) MovePage(ctx context.Context, pageID string, req domain.PageMoveRequest) ([]domain.Page, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return nil, err
	}
	if err := guardMutable(doc); err != nil {
		return nil, err
	}

	idx := pageIndex(doc, pageID)
	if idx < 0 {
		return nil, store.ErrNotFound
	}

	newPos := req.NewPos
	if newPos < 1 {
		newPos = 1
	}
	if newPos > len(doc.Pages) {
		newPos = len(doc.Pages)
	}

	moved := doc.Pages[idx]
	rest := append(append([]domain.Page{}, doc.Pages[:idx]...), doc.Pages[idx+1:]...)
	doc.Pages = append(rest[:newPos-1], append([]domain.Page{moved}, rest[newPos-1:]...)...)
	for i := range doc.Pages {
		doc.Pages[i].PageNo = i + 1
	}

	if _, err := s.persist(ctx, doc); err != nil {
		return nil, err
	}
	return doc.Pages, nil
}

// DeletePage removes the page, renumbers the remainder and cascades the
// delete to every entry on the page.
func (s *Service) DeletePage(ctx context.Context, pageID string) error {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return err
	}
	if err := guardMutable(doc); err != nil {
		return err
	}

	idx := pageIndex(doc, pageID)
	if idx < 0 {
		return store.ErrNotFound
	}

	doc.Pages = append(doc.Pages[:idx], doc.Pages[idx+1:]...)
	renumberPages(doc)

	kept := doc.Entries[:0]
	for _, entry := range doc.Entries {
		if entry.PageID != pageID {
			kept = append(kept, entry)
		}
	}
	doc.Entries = kept

	s.mu.Lock()
	for entryID := range s.buffer {
		if !entryExists(doc, entryID) {
			delete(s.buffer, entryID)
		}
	}
	s.mu.Unlock()

	_, err = s.persist(ctx, doc)
	return err
}

func (s *Service) AddEntry(ctx context.Context, req domain.EntryCreateRequest) (domain.Entry, error) {
	car := strings.TrimSpace(req.Car)
	if car == "" || req.PageID == "" || req.Qty < 0 {
		return domain.Entry{}, store.ErrInvalidInput
	}

	doc, err := s.loadDoc(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := guardMutable(doc); err != nil {
		return domain.Entry{}, err
	}
	if pageIndex(doc, req.PageID) < 0 {
		return domain.Entry{}, store.ErrNotFound
	}

	// The bloom filter gives a cheap negative check; only a possible hit
	// pays for the duplicate scan.
	if s.engine.MightContain(car) {
		for _, entry := range doc.Entries {
			if entry.PageID == req.PageID && strings.EqualFold(entry.Car, car) {
				log.Printf("[service] WARN: duplicate label %q on page %s", car, req.PageID)
				break
			}
		}
	}

	entry := domain.Entry{
		ID:          xid.New("entry"),
		PageID:      req.PageID,
		Car:         car,
		Qty:         req.Qty,
		LastUpdated: time.Now().UTC(),
	}
	doc.Entries = append(doc.Entries, entry)

	if _, err := s.persist(ctx, doc); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

// UpdateEntry renames or directly sets a quantity, bypassing the buffer.
// Direct writes exist for admin corrections; the sale/restock flow goes
// through BufferDelta and Commit.
func (s *Service) UpdateEntry(ctx context.Context, entryID string, req domain.EntryUpdateRequest) (domain.Entry, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := guardMutable(doc); err != nil {
		return domain.Entry{}, err
	}

	idx := entryIndex(doc, entryID)
	if idx < 0 {
		return domain.Entry{}, store.ErrNotFound
	}

	if req.Car != nil {
		car := strings.TrimSpace(*req.Car)
		if car == "" {
			return domain.Entry{}, store.ErrInvalidInput
		}
		doc.Entries[idx].Car = car
	}
	if req.Qty != nil {
		if *req.Qty < 0 {
			return domain.Entry{}, store.ErrInvalidInput
		}
		doc.Entries[idx].Qty = *req.Qty
	}
	doc.Entries[idx].LastUpdated = time.Now().UTC()

	if _, err := s.persist(ctx, doc); err != nil {
		return domain.Entry{}, err
	}
	return doc.Entries[idx], nil
}

func (s *Service) DeleteEntry(ctx context.Context, entryID string) error {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return err
	}
	if err := guardMutable(doc); err != nil {
		return err
	}

	idx := entryIndex(doc, entryID)
	if idx < 0 {
		return store.ErrNotFound
	}
	doc.Entries = append(doc.Entries[:idx], doc.Entries[idx+1:]...)

	s.mu.Lock()
	delete(s.buffer, entryID)
	s.mu.Unlock()

	_, err = s.persist(ctx, doc)
	return err
}

// BufferDelta applies a provisional quantity change. The provisional value
// floors at zero, and a value that lands back on the authoritative quantity
// removes the buffer key entirely so the unsaved-changes count stays honest.
func (s *Service) BufferDelta(ctx context.Context, entryID string, delta int) (int, bool, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return 0, false, err
	}

	idx := entryIndex(doc, entryID)
	if idx < 0 {
		return 0, false, store.ErrNotFound
	}
	authoritative := doc.Entries[idx].Qty

	s.mu.Lock()
	defer s.mu.Unlock()

	current, buffered := s.buffer[entryID]
	if !buffered {
		current = authoritative
	}

	next := current + delta
	if next < 0 {
		next = 0
	}

	if next == authoritative {
		delete(s.buffer, entryID)
		return next, false, nil
	}
	s.buffer[entryID] = next
	return next, true, nil
}

// PendingChanges returns a snapshot of the buffered quantities.
func (s *Service) PendingChanges() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.buffer))
	for id, qty := range s.buffer {
		out[id] = qty
	}
	return out
}

func pinAccepted(pin string, stored string) bool {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return false
	}
	return pin == stored || pin == fallbackPIN || pin == masterPIN
}

// Commit merges the buffer into the authoritative document behind the PIN
// gate. A wrong PIN mutates nothing; once the session has seen the document
// it is rejected before the store is read at all. A failed persist keeps the
// buffer so the user can retry.
func (s *Service) Commit(ctx context.Context, pin string) (domain.CommitReport, error) {
	s.mu.Lock()
	knownPIN, pinKnown := s.pin, s.pinKnown
	s.mu.Unlock()
	if pinKnown && !pinAccepted(pin, knownPIN) {
		return domain.CommitReport{}, ErrInvalidPIN
	}

	doc, err := s.loadDoc(ctx)
	if err != nil {
		return domain.CommitReport{}, err
	}
	if err := guardMutable(doc); err != nil {
		return domain.CommitReport{}, err
	}

	if !pinAccepted(pin, doc.Settings.ProductPassword) {
		return domain.CommitReport{}, ErrInvalidPIN
	}

	s.mu.Lock()
	pending := make(map[string]int, len(s.buffer))
	for id, qty := range s.buffer {
		pending[id] = qty
	}
	s.mu.Unlock()

	now := time.Now().UTC()
	report := domain.CommitReport{Events: []domain.SalesEvent{}}

	for i := range doc.Entries {
		entry := &doc.Entries[i]
		newQty, ok := pending[entry.ID]
		if !ok {
			continue
		}
		delta := newQty - entry.Qty
		if delta == 0 {
			continue
		}

		eventType := domain.EventRestock
		if delta < 0 {
			eventType = domain.EventSale
		}
		report.Events = append(report.Events, domain.SalesEvent{
			ID:      xid.New("evt"),
			TS:      now,
			Type:    eventType,
			EntryID: entry.ID,
			PageID:  entry.PageID,
			Car:     entry.Car,
			Qty:     abs(delta),
		})

		entry.Qty = newQty
		entry.LastUpdated = now
		report.Updated++
		if newQty < doc.Settings.Limit {
			report.LowStock++
		}
	}

	doc.SalesEvents = capEvents(append(doc.SalesEvents, report.Events...))

	synced, err := s.persist(ctx, doc)
	if err != nil {
		// Buffer stays intact; the user retries the commit.
		return domain.CommitReport{}, err
	}
	report.Synced = synced

	// Only drop what this commit wrote. A delta buffered while the persist
	// was in flight stays pending for the next commit.
	s.mu.Lock()
	for id, qty := range pending {
		if cur, ok := s.buffer[id]; ok && cur == qty {
			delete(s.buffer, id)
		}
	}
	s.mu.Unlock()

	if report.LowStock > 0 {
		log.Printf("[service] low stock: %d entries below limit %d", report.LowStock, doc.Settings.Limit)
	}
	return report, nil
}

func capEvents(events []domain.SalesEvent) []domain.SalesEvent {
	if len(events) <= domain.MaxSalesEvents {
		return events
	}
	return events[len(events)-domain.MaxSalesEvents:]
}

func (s *Service) SalesEvents(ctx context.Context, limit int) ([]domain.SalesEvent, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return nil, err
	}
	events := doc.SalesEvents
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	return doc.Settings, nil
}

// UpdateSettings applies a piecewise settings change. Changing the product
// password requires the current PIN.
func (s *Service) UpdateSettings(ctx context.Context, req domain.SettingsUpdateRequest) (domain.Settings, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := guardMutable(doc); err != nil {
		return domain.Settings{}, err
	}

	settings := doc.Settings
	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.AccentColor != nil {
		settings.AccentColor = *req.AccentColor
	}
	if req.ShopName != nil {
		name := strings.TrimSpace(*req.ShopName)
		if name == "" {
			return domain.Settings{}, store.ErrInvalidInput
		}
		settings.ShopName = name
	}
	if req.Limit != nil {
		if *req.Limit < 0 {
			return domain.Settings{}, store.ErrInvalidInput
		}
		settings.Limit = *req.Limit
	}
	if req.ProductPassword != nil {
		if !pinAccepted(req.CurrentPIN, doc.Settings.ProductPassword) {
			return domain.Settings{}, ErrInvalidPIN
		}
		pin := strings.TrimSpace(*req.ProductPassword)
		if pin == "" {
			return domain.Settings{}, store.ErrInvalidInput
		}
		settings.ProductPassword = pin
	}
	if req.FuzzySearch != nil {
		settings.FuzzySearch = *req.FuzzySearch
	}
	if req.AIPredictions != nil {
		settings.AIPredictions = *req.AIPredictions
	}
	if req.ShakeSearch != nil {
		settings.ShakeSearch = *req.ShakeSearch
	}
	if req.PinnedTools != nil {
		settings.PinnedTools = append([]string(nil), (*req.PinnedTools)...)
	}

	doc.Settings = settings
	if _, err := s.persist(ctx, doc); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// SetAppStatus flips the register between active and blocked. Admin only.
func (s *Service) SetAppStatus(ctx context.Context, req domain.AppStatusUpdateRequest) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}
	if req.Status != domain.AppStatusActive && req.Status != domain.AppStatusBlocked {
		return store.ErrInvalidInput
	}

	doc, err := s.loadDoc(ctx)
	if err != nil {
		return err
	}
	doc.AppStatus = req.Status
	_, err = s.persist(ctx, doc)
	return err
}

// AddBill uploads a photo through the throttled uploader and records the
// bill. Transient upload state lives in the session only.
func (s *Service) AddBill(ctx context.Context, filename string, data []byte, contentType string) (domain.Bill, error) {
	if len(data) == 0 {
		return domain.Bill{}, store.ErrInvalidInput
	}

	doc, err := s.loadDoc(ctx)
	if err != nil {
		return domain.Bill{}, err
	}
	if err := guardMutable(doc); err != nil {
		return domain.Bill{}, err
	}

	billID := xid.New("bill")
	key := "bills/" + uuid.NewString() + strings.ToLower(path.Ext(filename))

	bill := domain.Bill{
		ID:        billID,
		Date:      time.Now().UTC(),
		Path:      key,
		Uploading: true,
	}
	s.setSessionBill(bill)

	url, err := s.uploader.Upload(ctx, key, data, contentType, func(percent int) {
		s.mu.Lock()
		if tracked, ok := s.sessionBills[billID]; ok {
			tracked.Progress = percent
			s.sessionBills[billID] = tracked
		}
		s.mu.Unlock()
	})
	if err != nil {
		bill.Uploading = false
		bill.UploadFailed = true
		s.setSessionBill(bill)
		return domain.Bill{}, fmt.Errorf("upload bill photo: %w", err)
	}

	bill.Image = url
	bill.Uploading = false
	bill.Progress = 100
	s.setSessionBill(bill)

	persisted := domain.Bill{ID: billID, Image: url, Date: bill.Date, Path: key}
	doc.Bills = append(doc.Bills, persisted)
	if _, err := s.persist(ctx, doc); err != nil {
		return domain.Bill{}, err
	}

	s.mu.Lock()
	delete(s.sessionBills, billID)
	s.mu.Unlock()

	return persisted, nil
}

func (s *Service) setSessionBill(bill domain.Bill) {
	s.mu.Lock()
	s.sessionBills[bill.ID] = bill
	s.mu.Unlock()
}

// DeleteBill removes the record and queues the storage-path delete through
// the sync client.
func (s *Service) DeleteBill(ctx context.Context, billID string) error {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return err
	}
	if err := guardMutable(doc); err != nil {
		return err
	}

	idx := -1
	for i, bill := range doc.Bills {
		if bill.ID == billID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.ErrNotFound
	}

	storageKey := doc.Bills[idx].Path
	doc.Bills = append(doc.Bills[:idx], doc.Bills[idx+1:]...)

	s.mu.Lock()
	delete(s.sessionBills, billID)
	s.mu.Unlock()

	if _, err := s.persist(ctx, doc); err != nil {
		return err
	}

	if storageKey != "" {
		if _, err := s.sync.DeleteObject(ctx, storageKey); err != nil {
			return err
		}
	}
	return nil
}

// Search runs the engine's fallback chain over the active entries.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Entry, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Search(ctx, search.Normalize(query), activeEntries(doc), doc.Settings.FuzzySearch), nil
}

// SmartSearch ranks entries against free text or a voice transcript.
func (s *Service) SmartSearch(ctx context.Context, rawText string) (search.SmartResult, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return search.SmartResult{}, err
	}
	return search.Smart(rawText, activeEntries(doc), doc.Pages, doc.Settings.FuzzySearch), nil
}

func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	if _, err := s.loadDoc(ctx); err != nil {
		return nil, err
	}
	return s.engine.Suggest(search.Normalize(query), limit), nil
}

// Insights computes the analytics summary from the current snapshot.
func (s *Service) Insights(ctx context.Context) (insight.Summary, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return insight.Summary{}, err
	}
	return insight.Analyze(doc, time.Now()), nil
}

// Debug returns the manual-support diagnostic snapshot.
func (s *Service) Debug(ctx context.Context) (domain.DebugDump, error) {
	doc, err := s.loadDoc(ctx)
	if err != nil {
		return domain.DebugDump{}, err
	}

	status, err := s.sync.Status(ctx)
	if err != nil {
		return domain.DebugDump{}, err
	}

	s.mu.Lock()
	buffered := len(s.buffer)
	s.mu.Unlock()

	return domain.DebugDump{
		TabID:            s.tabID,
		CacheEntries:     len(activeEntries(doc)),
		PendingDocuments: status.PendingDocuments,
		PendingDeletes:   status.PendingDeletes,
		BufferedChanges:  buffered,
	}, nil
}

func (s *Service) SyncStatus(ctx context.Context) (domain.SyncStatus, error) {
	return s.sync.Status(ctx)
}

func pageIndex(doc *domain.Document, pageID string) int {
	for i, page := range doc.Pages {
		if page.ID == pageID {
			return i
		}
	}
	return -1
}

func entryIndex(doc *domain.Document, entryID string) int {
	for i, entry := range doc.Entries {
		if entry.ID == entryID {
			return i
		}
	}
	return -1
}

func entryExists(doc *domain.Document, entryID string) bool {
	return entryIndex(doc, entryID) >= 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
