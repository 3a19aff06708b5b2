package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"applestore/internal/cache"
	"applestore/internal/domain"
	"applestore/internal/http/handlers"
	applog "applestore/internal/log"
	"applestore/internal/notify"
	"applestore/internal/repos"
	"applestore/internal/services"
)

type queue struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (q *queue) Enqueue(n notify.Notification) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.got = append(q.got, n)
	return true
}

type testEnv struct {
	app   *fiber.App
	gw    *repos.Gateway
	store *services.CatalogStore
	views cache.Views
	queue *queue
}

// newEnv wires the real stack on an in-memory database seeded with the
// sample catalog. online=false runs without persistence (offline mode).
func newEnv(t *testing.T, online bool, adminToken string) *testEnv {
	t.Helper()
	return newEnvWithViews(t, online, adminToken, cache.NewMemory(time.Minute))
}

func newEnvWithViews(t *testing.T, online bool, adminToken string, views cache.Views) *testEnv {
	t.Helper()
	ctx := context.Background()

	var db *sqlx.DB
	if online {
		var err error
		db, err = repos.OpenDB(repos.DriverSQLite, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, repos.Migrate(db))
	}
	gw := repos.NewGateway(db, views, nil)
	if online {
		_, err := gw.SaveConfig(ctx, domain.DefaultStoreConfig())
		require.NoError(t, err)
		_, err = repos.SeedIfEmpty(ctx, gw)
		require.NoError(t, err)
	}

	store := services.NewCatalogStore(gw, services.WithViews(views))
	store.Refresh(ctx)
	q := &queue{}
	monitor := services.NewLowStockMonitor(store, gw, q, nil)

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})
	app.Use(requestid.New())
	handlers.Register(app, handlers.NewDeps(store, monitor, views), adminToken)
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Página no encontrada"})
	})
	return &testEnv{app: app, gw: gw, store: store, views: views, queue: q}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	return resp, string(raw)
}

type logEntry struct {
	Action string         `json:"action"`
	Kind   string         `json:"kind"`
	Fields map[string]any `json:"fields"`
	Err    string         `json:"err"`
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

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	old := applog.SetOutput(buf)
	defer applog.SetOutput(old)

	fn()

	buf.mu.Lock()
	defer buf.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
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
