package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"shelfkeeper/internal/advisory"
	"shelfkeeper/internal/expiry"
	"shelfkeeper/internal/http/handlers"
	applog "shelfkeeper/internal/log"
	"shelfkeeper/internal/repos"
	"shelfkeeper/internal/services"
)

var fixedNow = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

const testSecret = "test-secret-test-secret-test-secret!"

type testApp struct {
	app  *fiber.App
	mem  *repos.MemoryGateway
	auth *services.AuthService
}

type appOptions struct {
	limits handlers.Limits
	gen    advisory.Generator
}

// newTestApp wires the real routes over the simulated backend, the way main
// does, minus the global limiter and helmet.
func newTestApp(t *testing.T, opts appOptions) *testApp {
	t.Helper()
	mem := repos.NewMemoryGateway(repos.MemoryOptions{Now: clock})
	ws := services.NewWorkspaceService(mem, expiry.Defaults())
	ws.Now = clock
	authSvc := &services.AuthService{Users: mem, Secret: []byte(testSecret), TTL: time.Hour}
	adv := &services.AdvisoryService{Advisor: advisory.New(opts.gen), Workspace: ws}

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	handlers.Mount(app, handlers.NewDeps(authSvc, ws, adv), opts.limits)
	return &testApp{app: app, mem: mem, auth: authSvc}
}

// token issues a bearer token for the demo account without a login round trip.
func (ta *testApp) token(t *testing.T) string {
	t.Helper()
	u, err := ta.mem.ByEmail(t.Context(), repos.DemoEmail)
	if err != nil {
		t.Fatalf("demo user: %v", err)
	}
	tok, err := ta.auth.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Kind   string         `json:"kind"`
	ReqID  string         `json:"req_id"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs collects the JSON log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	applog.SetOutput(buf)
	defer applog.SetOutput(io.Discard)

	fn()

	buf.mu.Lock()
	defer buf.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if line != "" && json.Unmarshal([]byte(line), &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
