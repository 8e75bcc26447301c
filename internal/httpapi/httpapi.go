package httpapi

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"bukustok/backend/internal/domain"
	"bukustok/backend/internal/motion"
	"bukustok/backend/internal/service"
	"bukustok/backend/internal/store"
	"bukustok/backend/internal/syncq"
)

const maxBillPhotoBytes = 8 << 20

type API struct {
	service       *service.Service
	auth          *AuthManager
	syncClient    *syncq.Client
	shakes        *motion.Detector
	allowedOrigin string
	loginLimiter  *attemptLimiter
	pinLimiter    *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, syncClient *syncq.Client, allowedOrigin string) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		// Fall back to a deterministic secret if crypto/rand fails (should not happen in practice).
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:       svc,
		auth:          auth,
		syncClient:    syncClient,
		shakes:        motion.NewDetector(),
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		pinLimiter:    newAttemptLimiter(8, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

// csrfTokenForHour computes an HMAC-SHA256 token for the given hour bucket
// (expressed as Unix time truncated to the hour). The token is hex-encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

// generateCSRFToken returns a token valid for the current hour bucket.
func (a *API) generateCSRFToken() string {
	now := time.Now().UTC()
	bucket := now.Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken checks whether the provided token matches the current or
// previous hour bucket, giving a 2-hour validity window.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	now := time.Now().UTC()
	currentBucket := now.Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	expected1 := a.csrfTokenForHour(currentBucket)
	expected2 := a.csrfTokenForHour(prevBucket)

	return hmac.Equal([]byte(token), []byte(expected1)) ||
		hmac.Equal([]byte(token), []byte(expected2))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/csrf-token", a.handleCSRFToken)
	mux.HandleFunc("/api/v1/auth/register", a.requireAuth(a.handleRegister, "admin"))

	mux.HandleFunc("/api/v1/document", a.requireAuth(a.handleDocument, "staff", "admin"))
	mux.HandleFunc("/api/v1/pages", a.requireAuth(a.handlePages, "staff", "admin"))
	mux.HandleFunc("/api/v1/pages/", a.requireAuth(a.handlePageActions, "staff", "admin"))
	mux.HandleFunc("/api/v1/entries", a.requireAuth(a.handleEntries, "staff", "admin"))
	mux.HandleFunc("/api/v1/entries/", a.requireAuth(a.handleEntryActions, "staff", "admin"))
	mux.HandleFunc("/api/v1/buffer", a.requireAuth(a.handleBuffer, "staff", "admin"))
	mux.HandleFunc("/api/v1/commit", a.requireAuth(a.handleCommit, "staff", "admin"))

	mux.HandleFunc("/api/v1/settings", a.requireAuth(a.handleSettings, "staff", "admin"))
	mux.HandleFunc("/api/v1/app-status", a.requireAuth(a.handleAppStatus, "admin"))

	mux.HandleFunc("/api/v1/bills", a.requireAuth(a.handleBills, "staff", "admin"))
	mux.HandleFunc("/api/v1/bills/", a.requireAuth(a.handleBillActions, "staff", "admin"))

	mux.HandleFunc("/api/v1/search", a.requireAuth(a.handleSearch, "staff", "admin"))
	mux.HandleFunc("/api/v1/search/smart", a.requireAuth(a.handleSmartSearch, "staff", "admin"))
	mux.HandleFunc("/api/v1/search/suggest", a.requireAuth(a.handleSuggest, "staff", "admin"))
	mux.HandleFunc("/api/v1/motion", a.requireAuth(a.handleMotion, "staff", "admin"))

	mux.HandleFunc("/api/v1/insights", a.requireAuth(a.handleInsights, "staff", "admin"))
	mux.HandleFunc("/api/v1/sales-events", a.requireAuth(a.handleSalesEvents, "staff", "admin"))

	mux.HandleFunc("/api/v1/sync/status", a.requireAuth(a.handleSyncStatus, "staff", "admin"))
	mux.HandleFunc("/api/v1/sync/replay", a.requireAuth(a.handleSyncReplay, "staff", "admin"))
	mux.HandleFunc("/api/v1/debug", a.requireAuth(a.handleDebug, "admin"))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCSRFToken returns a stateless CSRF token valid for the current hour bucket.
// Clients must include this token in the X-CSRF-Token header for all mutating requests.
func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"staff": a.auth.ListStaff()})
	case http.MethodPost:
		var req domain.RegisterAccountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		actor, err := a.auth.CreateAccount(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"username": actor.Username,
			"role":     actor.Role,
		})
	default:
		writeMethodNotAllowed(w)
	}
}

// csrfExemptPaths lists paths that are exempt from CSRF validation.
// Login is excluded because it is called without a prior CSRF token fetch.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
}

// checkCSRF enforces CSRF token validation for state-changing methods (POST/PUT/PATCH).
// Returns false and writes an error response if validation fails.
func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	method := r.Method
	if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch && method != http.MethodDelete {
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

func (a *API) handleDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	doc, err := a.service.Document(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": doc})
}

func (a *API) handlePages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		pages, err := a.service.Pages(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
	case http.MethodPost:
		var req domain.PageCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		page, err := a.service.AddPage(r.Context(), req)
		if err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"page": page})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handlePageActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/pages/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("page id required"))
		return
	}

	if strings.HasSuffix(tail, "/move") {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		pageID := strings.Trim(strings.TrimSuffix(tail, "/move"), "/")
		if pageID == "" {
			writeError(w, http.StatusBadRequest, errors.New("page id required"))
			return
		}

		var req domain.PageMoveRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		pages, err := a.service.MovePage(r.Context(), pageID, req)
		if err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.PageRenameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		page, err := a.service.RenamePage(r.Context(), tail, req)
		if err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"page": page})
	case http.MethodDelete:
		if err := a.service.DeletePage(r.Context(), tail); err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := a.service.Entries(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	case http.MethodPost:
		var req domain.EntryCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		entry, err := a.service.AddEntry(r.Context(), req)
		if err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleEntryActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/entries/"
	entryID := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if entryID == "" {
		writeError(w, http.StatusBadRequest, errors.New("entry id required"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.EntryUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		entry, err := a.service.UpdateEntry(r.Context(), entryID, req)
		if err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
	case http.MethodDelete:
		if err := a.service.DeleteEntry(r.Context(), entryID); err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBuffer(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"pending": a.service.PendingChanges()})
	case http.MethodPost:
		var req domain.BufferDeltaRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		qty, buffered, err := a.service.BufferDelta(r.Context(), req.EntryID, req.Delta)
		if err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"qty":      qty,
			"buffered": buffered,
			"pending":  len(a.service.PendingChanges()),
		})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CommitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !a.pinLimiter.Allow("pin:commit:" + clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many pin attempts"))
		return
	}

	report, err := a.service.Commit(r.Context(), req.PIN)
	if err != nil {
		writeError(w, statusForServiceError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := a.service.Settings(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"settings": redactSettings(settings)})
	case http.MethodPatch:
		var req domain.SettingsUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if req.ProductPassword != nil && !a.pinLimiter.Allow("pin:settings:"+clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, errors.New("too many pin attempts"))
			return
		}

		settings, err := a.service.UpdateSettings(r.Context(), req)
		if err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"settings": redactSettings(settings)})
	default:
		writeMethodNotAllowed(w)
	}
}

// redactSettings blanks the product password before it leaves the API.
func redactSettings(settings domain.Settings) domain.Settings {
	settings.ProductPassword = ""
	return settings
}

func (a *API) handleAppStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.AppStatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.service.SetAppStatus(r.Context(), req); err != nil {
		status := statusForServiceError(err)
		if strings.Contains(strings.ToLower(err.Error()), "admin role required") {
			status = http.StatusForbidden
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

func (a *API) handleBills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		doc, err := a.service.Document(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bills": doc.Bills})
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxBillPhotoBytes)
		if err := r.ParseMultipartForm(maxBillPhotoBytes); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("photo file required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		bill, err := a.service.AddBill(r.Context(), header.Filename, data, header.Header.Get("Content-Type"))
		if err != nil {
			writeError(w, statusForServiceError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"bill": bill})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBillActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}

	prefix := "/api/v1/bills/"
	billID := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if billID == "" {
		writeError(w, http.StatusBadRequest, errors.New("bill id required"))
		return
	}

	if err := a.service.DeleteBill(r.Context(), billID); err != nil {
		writeError(w, statusForServiceError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	results, err := a.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (a *API) handleSmartSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.service.SmartSearch(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 5, 20)
	suggestions, err := a.service.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// handleMotion feeds one accelerometer sample into the shared shake detector
// and reports whether a full gesture completed. Activation is ignored when
// shake search is switched off in settings.
func (a *API) handleMotion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
		Z  float64 `json:"z"`
		At int64   `json:"at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	settings, err := a.service.Settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !settings.ShakeSearch {
		writeJSON(w, http.StatusOK, map[string]any{"triggered": false, "enabled": false})
		return
	}

	at := time.UnixMilli(req.At)
	if req.At == 0 {
		at = time.Now()
	}
	triggered := a.shakes.Feed(motion.Sample{X: req.X, Y: req.Y, Z: req.Z, At: at})
	writeJSON(w, http.StatusOK, map[string]any{"triggered": triggered, "enabled": true})
}

func (a *API) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	summary, err := a.service.Insights(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleSalesEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, domain.MaxSalesEvents)
	events, err := a.service.SalesEvents(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (a *API) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	status, err := a.service.SyncStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handleSyncReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	a.syncClient.TriggerReplay()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (a *API) handleDebug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	dump, err := a.service.Debug(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, dump)
}

// statusForServiceError maps service sentinel errors onto HTTP statuses.
func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidPIN):
		return http.StatusForbidden
	case errors.Is(err, service.ErrShopBlocked):
		return http.StatusLocked
	default:
		return http.StatusUnprocessableEntity
	}
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Enforce CSRF protection for all state-changing requests.
		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// For 5xx responses, return a generic message to avoid leaking internal
	// implementation details (stack traces, SQL errors, file paths, etc.).
	// 4xx responses are user-facing so we return the original error message.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
