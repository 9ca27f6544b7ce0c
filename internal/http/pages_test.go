package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func pageGet(t *testing.T, ta *testApp, path, sid string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func TestInventoryPageStatusForm(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	sid := ta.token(t)

	resp, body := pageGet(t, ta, "/inventory?filter=critical", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Semi Skimmed Milk 1L") || strings.Contains(body, "Coca Cola") {
		t.Fatalf("critical filter not applied; body=%s", body)
	}
	csrfTok := extractCookie(resp, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf token missing")
	}

	// without the token the form is refused
	req := httptest.NewRequest("POST", "/inventory/b1/status", strings.NewReader("status=sold"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("POST", "/inventory/b1/status", strings.NewReader("csrf="+csrfTok+"&status=sold"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	entries := captureLogs(t, func() {
		resp, err = ta.app.Test(req, -1)
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/inventory" {
		t.Fatalf("expected redirect to /inventory, got %d", resp.StatusCode)
	}
	e, ok := findLog(entries, "batch.status")
	if !ok || e.Kind != "audit" || e.UserID == "" {
		t.Fatalf("expected audit log for the status change, got %+v", e)
	}

	_, body = pageGet(t, ta, "/reports", sid)
	if !strings.Contains(body, "GBP") {
		t.Fatalf("reports page missing currency; body=%s", body)
	}
}

func TestInventoryPageRejectsBadFilter(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	resp, _ := pageGet(t, ta, "/inventory?filter=nope", ta.token(t))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
