package web_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/drweldonhawaii/rvu-web-app/internal/rvu"
	"github.com/drweldonhawaii/rvu-web-app/internal/web"
)

func newTestServer(t *testing.T) (*web.Server, *rvu.Store, string) {
	t.Helper()
	dir := t.TempDir()

	rvuPath := filepath.Join(dir, "rvus.csv")
	cciPath := filepath.Join(dir, "cci.csv")
	writeFile(t, rvuPath, "code,work_rvu\n99213,1.3\n20610,0.94\n")
	writeFile(t, cciPath, "Column1,Column2,Modifier\n99213,20610,1\n")

	store := rvu.NewStore(rvuPath, cciPath)
	if err := store.Reload(); err != nil {
		t.Fatalf("reload store: %v", err)
	}

	srv, err := web.NewServer(web.Options{
		Bind:         "127.0.0.1:0",
		Password:     "hunter2",
		Store:        store,
		RVUTablePath: rvuPath,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, store, rvuPath
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func login(t *testing.T, handler http.Handler) *http.Cookie {
	t.Helper()
	form := strings.NewReader("password=hunter2")
	req := httptest.NewRequest(http.MethodPost, "/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "rvuweb_session" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	srv, _, _ := newTestServer(t)

	form := strings.NewReader("password=wrong")
	req := httptest.NewRequest(http.MethodPost, "/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect password.") {
		t.Fatalf("expected error message in body")
	}
}

func TestHomeRedirectsWithoutSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect location = %q, want /login", loc)
	}
}

func TestHomeScoresSubmittedCodes(t *testing.T) {
	srv, _, _ := newTestServer(t)
	cookie := login(t, srv.Handler())

	form := strings.NewReader("codes=99213, 20610")
	req := httptest.NewRequest(http.MethodPost, "/", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "2.24") {
		t.Fatalf("expected combined total 2.24 in body")
	}
	if !strings.Contains(body, "requires modifier 1") {
		t.Fatalf("expected modifier note in body")
	}
}

func TestBreakdownRequiresSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/breakdown", strings.NewReader(`{"codes":["99213"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["error"] != "unauthorized" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}

func TestBreakdownReturnsPerCodeValues(t *testing.T) {
	srv, _, _ := newTestServer(t)
	cookie := login(t, srv.Handler())

	req := httptest.NewRequest(http.MethodPost, "/breakdown", strings.NewReader(`{"codes":["99213","00000"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Breakdown []struct {
			Code string  `json:"code"`
			RVU  float64 `json:"rvu"`
		} `json:"breakdown"`
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Breakdown) != 2 {
		t.Fatalf("breakdown length = %d, want 2", len(resp.Breakdown))
	}
	if resp.Breakdown[0].RVU != 1.3 || resp.Breakdown[1].RVU != 0 {
		t.Fatalf("unexpected breakdown values: %+v", resp.Breakdown)
	}
	if resp.Total != 1.3 {
		t.Fatalf("total = %v, want 1.3", resp.Total)
	}
}

func TestUpdateReplacesTableAndReloads(t *testing.T) {
	srv, store, rvuPath := newTestServer(t)
	cookie := login(t, srv.Handler())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "rvus.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("code,work_rvu\n11111,5.5\n")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/update", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("redirect location = %q, want /", loc)
	}

	if got := store.RVU("11111"); got != 5.5 {
		t.Fatalf("RVU(11111) = %v, want 5.5 after upload", got)
	}
	if got := store.RVU("99213"); got != 0 {
		t.Fatalf("RVU(99213) = %v, want 0 after replacement", got)
	}

	data, err := os.ReadFile(rvuPath)
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if !strings.Contains(string(data), "11111") {
		t.Fatalf("uploaded content not persisted: %q", string(data))
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	srv, _, _ := newTestServer(t)
	cookie := login(t, srv.Handler())

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("logout status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login after logout, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
