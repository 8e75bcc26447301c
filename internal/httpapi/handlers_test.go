package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bukustok/backend/internal/blob"
	"bukustok/backend/internal/cache"
	"bukustok/backend/internal/domain"
	"bukustok/backend/internal/search"
	"bukustok/backend/internal/service"
	"bukustok/backend/internal/store/memory"
	"bukustok/backend/internal/syncq"
)

// newTestAPI builds a full API over the in-memory stack so handler tests
// exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	docs := memory.NewSeeded()
	blobs := blob.NewMemory()

	outbox, err := syncq.OpenOutbox(filepath.Join(t.TempDir(), "outbox.db"))
	if err != nil {
		t.Fatalf("open outbox: %v", err)
	}
	t.Cleanup(func() { outbox.Close() })

	client := syncq.NewClient(docs, blobs, outbox, 0)
	engine := search.NewEngine(cache.NoopSearchCache{}, 0)
	svc := service.New(docs, client, engine, blob.NewUploader(blobs), "main-shop")
	auth := NewAuthManager("test-secret-key", time.Hour, "admin", "admin123")

	return New(svc, auth, client, "*")
}

func doJSON(t *testing.T, api *API, method, path, token, csrf string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/healthz", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestLoginAndAuthGate(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/entries", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := loginAsAdmin(t, api)
	rec = doJSON(t, api, http.MethodGet, "/api/v1/entries", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Entries []domain.Entry `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(body.Entries) != 6 {
		t.Fatalf("expected 6 seeded entries, got %d", len(body.Entries))
	}
}

func TestPageLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/pages", token, csrf, domain.PageCreateRequest{ItemName: "Filters"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create page: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Page domain.Page `json:"page"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if created.Page.PageNo != 4 {
		t.Fatalf("expected page number 4, got %d", created.Page.PageNo)
	}

	rec = doJSON(t, api, http.MethodPatch, "/api/v1/pages/"+created.Page.ID, token, csrf, domain.PageRenameRequest{ItemName: "Air Filters"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename page: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/pages/"+created.Page.ID+"/move", token, csrf, domain.PageMoveRequest{NewPos: 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("move page: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodDelete, "/api/v1/pages/"+created.Page.ID, token, csrf, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete page: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodDelete, "/api/v1/pages/"+created.Page.ID, token, csrf, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing page: expected 404, got %d", rec.Code)
	}
}

func TestBufferAndCommitOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/buffer", token, csrf, domain.BufferDeltaRequest{EntryID: "entry-swift-brake", Delta: -2})
	if rec.Code != http.StatusOK {
		t.Fatalf("buffer: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var buffered struct {
		Qty      int  `json:"qty"`
		Buffered bool `json:"buffered"`
		Pending  int  `json:"pending"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&buffered); err != nil {
		t.Fatalf("decode buffer response: %v", err)
	}
	if buffered.Qty != 3 || !buffered.Buffered || buffered.Pending != 1 {
		t.Fatalf("unexpected buffer response %+v", buffered)
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/commit", token, csrf, domain.CommitRequest{PIN: "9999"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad pin: expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/commit", token, csrf, domain.CommitRequest{PIN: "0000"})
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var report domain.CommitReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Updated != 1 || report.LowStock != 1 || len(report.Events) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestSettingsRedactsPIN(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/settings", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Settings domain.Settings `json:"settings"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if body.Settings.ProductPassword != "" {
		t.Fatalf("product password leaked in response")
	}
	if body.Settings.ShopName != "My Shop" {
		t.Fatalf("unexpected settings %+v", body.Settings)
	}
}

func TestAppStatusRequiresAdminRole(t *testing.T) {
	api := newTestAPI(t)
	adminToken := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", adminToken, csrf, domain.RegisterAccountRequest{Username: "counter", Password: "password1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register staff: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	staffToken := login(t, api, "counter", "password1")
	rec = doJSON(t, api, http.MethodPost, "/api/v1/app-status", staffToken, csrf, domain.AppStatusUpdateRequest{Status: domain.AppStatusBlocked})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff block: expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/app-status", adminToken, csrf, domain.AppStatusUpdateRequest{Status: domain.AppStatusBlocked})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin block: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	// Mutations now fail with 423 while reads keep working.
	rec = doJSON(t, api, http.MethodPost, "/api/v1/pages", adminToken, csrf, domain.PageCreateRequest{ItemName: "Filters"})
	if rec.Code != http.StatusLocked {
		t.Fatalf("blocked mutation: expected 423, got %d", rec.Code)
	}
	rec = doJSON(t, api, http.MethodGet, "/api/v1/entries", staffToken, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("blocked read: expected 200, got %d", rec.Code)
	}
}

func TestBillUploadOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("photo", "receipt.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("jpeg-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload bill: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Bill domain.Bill `json:"bill"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode bill: %v", err)
	}
	if created.Bill.Image == "" {
		t.Fatalf("bill missing image url: %+v", created.Bill)
	}

	rec = doJSON(t, api, http.MethodDelete, "/api/v1/bills/"+created.Bill.ID, token, csrf, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete bill: expected 200, got %d", rec.Code)
	}
}

func TestSearchEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/search?q=swift", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", rec.Code)
	}
	var results struct {
		Results []domain.Entry `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results.Results) != 2 {
		t.Fatalf("expected both Swift entries, got %d", len(results.Results))
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/search/smart", token, csrf, map[string]string{"text": "check alto oil stock"})
	if rec.Code != http.StatusOK {
		t.Fatalf("smart search: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var smart search.SmartResult
	if err := json.NewDecoder(rec.Body).Decode(&smart); err != nil {
		t.Fatalf("decode smart result: %v", err)
	}
	if !smart.Match {
		t.Fatalf("expected a smart match, got %+v", smart)
	}
}

func TestSyncStatusAndReplay(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/sync/status", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync status: expected 200, got %d", rec.Code)
	}
	var status domain.SyncStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.PendingDocuments != 0 || status.PendingDeletes != 0 {
		t.Fatalf("expected empty outbox, got %+v", status)
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/sync/replay", token, csrf, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("sync replay: expected 202, got %d", rec.Code)
	}
}

func TestDebugRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	adminToken := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/register", adminToken, csrf, domain.RegisterAccountRequest{Username: "counter", Password: "password1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register staff: expected 201, got %d", rec.Code)
	}
	staffToken := login(t, api, "counter", "password1")

	rec = doJSON(t, api, http.MethodGet, "/api/v1/debug", staffToken, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff debug: expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/debug", adminToken, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin debug: expected 200, got %d", rec.Code)
	}
	var dump domain.DebugDump
	if err := json.NewDecoder(rec.Body).Decode(&dump); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if dump.TabID == "" {
		t.Fatalf("missing tab id in dump")
	}
}

func login(t *testing.T, api *API, username, password string) string {
	t.Helper()

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", "", domain.LoginRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s failed, status %d", username, rec.Code)
	}

	var payload domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return payload.AccessToken
}
