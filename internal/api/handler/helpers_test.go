package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// stubDB backs the core services in handler tests: Exec always succeeds
// (unless execErr is set) and every QueryRow scans via rowScan.
type stubDB struct {
	execErr error
	rowScan func(dest ...any) error
}

func (s *stubDB) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, s.execErr
}

func (s *stubDB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return stubRow{scan: s.rowScan}
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

var storedCreatedAt = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
var storedUpdatedAt = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// serverRowScan fills a stored server row the way the servers table
// returns it.
func serverRowScan(dest ...any) error {
	*dest[0].(*string) = "srv-1"
	*dest[1].(*string) = "alpha"
	*dest[2].(*string) = "alpha.example.com"
	*dest[3].(*int) = 22
	*dest[4].(*string) = "backup"
	*dest[18].(*time.Time) = storedCreatedAt
	*dest[19].(*time.Time) = storedUpdatedAt
	return nil
}

// scheduleRowScan fills a stored schedule row, resolved expression
// included.
func scheduleRowScan(dest ...any) error {
	*dest[0].(*string) = "sched-1"
	*dest[1].(*string) = "nightly"
	*dest[3].(*string) = "daily"
	*dest[6].(*string) = "0 2 * * *"
	*dest[7].(*bool) = true
	*dest[10].(*time.Time) = storedCreatedAt
	*dest[11].(*time.Time) = storedUpdatedAt
	return nil
}
