package domain

import "time"

// AppStatus gates the whole register. A blocked document rejects every
// mutating operation until the status is flipped back by an operator.
const (
	AppStatusActive  = "active"
	AppStatusBlocked = "blocked"
)

const (
	EventSale    = "sale"
	EventRestock = "restock"
)

// MaxSalesEvents caps the append-only event log. Oldest events are evicted
// first when the cap is exceeded.
const MaxSalesEvents = 2000

// Page is a named category of entries. PageNo values are dense and 1-based
// over all pages of a document; every structural change renumbers them.
type Page struct {
	ID       string `json:"id"`
	PageNo   int    `json:"page_no"`
	ItemName string `json:"item_name"`
}

// Entry is a stock-keeping record under exactly one page. Qty never goes
// negative. An entry whose PageID matches no page is treated as deleted.
type Entry struct {
	ID          string    `json:"id"`
	PageID      string    `json:"page_id"`
	Car         string    `json:"car"`
	Qty         int       `json:"qty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// Bill is a photographed purchase receipt. Uploading, Progress, UploadFailed
// and a local preview Image are session-local and are never persisted
// remotely; they are merged over incoming snapshots.
type Bill struct {
	ID           string    `json:"id"`
	Image        string    `json:"image,omitempty"`
	Date         time.Time `json:"date"`
	Path         string    `json:"path,omitempty"`
	Uploading    bool      `json:"uploading,omitempty"`
	Progress     int       `json:"progress,omitempty"`
	UploadFailed bool      `json:"upload_failed,omitempty"`
}

// SalesEvent records a committed quantity change. Qty is always the absolute
// delta; Type tells whether stock went down (sale) or up (restock).
type SalesEvent struct {
	ID      string    `json:"id"`
	TS      time.Time `json:"ts"`
	Type    string    `json:"type"`
	EntryID string    `json:"entry_id"`
	PageID  string    `json:"page_id"`
	Car     string    `json:"car"`
	Qty     int       `json:"qty"`
}

type Settings struct {
	Theme           string   `json:"theme"`
	AccentColor     string   `json:"accent_color,omitempty"`
	ShopName        string   `json:"shop_name"`
	Limit           int      `json:"limit"`
	ProductPassword string   `json:"product_password"`
	FuzzySearch     bool     `json:"fuzzy_search"`
	AIPredictions   bool     `json:"ai_predictions"`
	ShakeSearch     bool     `json:"shake_search"`
	PinnedTools     []string `json:"pinned_tools"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:           "light",
		ShopName:        "My Shop",
		Limit:           5,
		ProductPassword: "0000",
		FuzzySearch:     true,
		AIPredictions:   true,
		ShakeSearch:     true,
		PinnedTools:     []string{},
	}
}

// Document is the single remote record for one shop. Every mutation reads
// the whole document, modifies a slice and writes the whole document back;
// last writer wins.
type Document struct {
	Pages       []Page       `json:"pages"`
	Entries     []Entry      `json:"entries"`
	Bills       []Bill       `json:"bills"`
	SalesEvents []SalesEvent `json:"sales_events"`
	Settings    Settings     `json:"settings"`
	AppStatus   string       `json:"app_status"`
}

func NewDocument() *Document {
	return &Document{
		Pages:       []Page{},
		Entries:     []Entry{},
		Bills:       []Bill{},
		SalesEvents: []SalesEvent{},
		Settings:    DefaultSettings(),
		AppStatus:   AppStatusActive,
	}
}

// Clone returns a deep copy. Stores and watchers hand out clones so callers
// can never alias internal state.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Pages = append([]Page(nil), d.Pages...)
	clone.Entries = append([]Entry(nil), d.Entries...)
	clone.Bills = append([]Bill(nil), d.Bills...)
	clone.SalesEvents = append([]SalesEvent(nil), d.SalesEvents...)
	clone.Settings.PinnedTools = append([]string(nil), d.Settings.PinnedTools...)
	return &clone
}

type Actor struct {
	Username string
	Role     string
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type RegisterAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PageCreateRequest struct {
	ItemName string `json:"item_name"`
}

type PageRenameRequest struct {
	ItemName string `json:"item_name"`
}

type PageMoveRequest struct {
	NewPos int `json:"new_pos"`
}

type EntryCreateRequest struct {
	PageID string `json:"page_id"`
	Car    string `json:"car"`
	Qty    int    `json:"qty"`
}

type EntryUpdateRequest struct {
	Car *string `json:"car,omitempty"`
	Qty *int    `json:"qty,omitempty"`
}

type BufferDeltaRequest struct {
	EntryID string `json:"entry_id"`
	Delta   int    `json:"delta"`
}

type CommitRequest struct {
	PIN string `json:"pin"`
}

// CommitReport summarizes one successful commit. LowStock is the number of
// entries whose new quantity fell below Settings.Limit.
type CommitReport struct {
	Updated  int          `json:"updated"`
	Events   []SalesEvent `json:"events"`
	LowStock int          `json:"low_stock"`
	Synced   bool         `json:"synced"`
}

type SettingsUpdateRequest struct {
	Theme           *string   `json:"theme,omitempty"`
	AccentColor     *string   `json:"accent_color,omitempty"`
	ShopName        *string   `json:"shop_name,omitempty"`
	Limit           *int      `json:"limit,omitempty"`
	ProductPassword *string   `json:"product_password,omitempty"`
	CurrentPIN      string    `json:"current_pin,omitempty"`
	FuzzySearch     *bool     `json:"fuzzy_search,omitempty"`
	AIPredictions   *bool     `json:"ai_predictions,omitempty"`
	ShakeSearch     *bool     `json:"shake_search,omitempty"`
	PinnedTools     *[]string `json:"pinned_tools,omitempty"`
}

type AppStatusUpdateRequest struct {
	Status string `json:"status"`
}

// SyncStatus exposes the durable outbox state for observability.
type SyncStatus struct {
	PendingDocuments int       `json:"pending_documents"`
	PendingDeletes   int       `json:"pending_deletes"`
	LastReplayAt     time.Time `json:"last_replay_at,omitempty"`
	LastError        string    `json:"last_error,omitempty"`
}

// DebugDump is the manual-support diagnostic snapshot.
type DebugDump struct {
	TabID            string `json:"tab_id"`
	CacheEntries     int    `json:"cache_entries"`
	PendingDocuments int    `json:"pending_documents"`
	PendingDeletes   int    `json:"pending_deletes"`
	BufferedChanges  int    `json:"buffered_changes"`
}
