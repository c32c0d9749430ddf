package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	adapthttp "bodymetrics/internal/adapter/http"
	"bodymetrics/internal/adapter/memory"
	"bodymetrics/internal/app"
	"bodymetrics/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// ---------------------------------------------------------------------------
// Mock storage (function-fields pattern)
// ---------------------------------------------------------------------------

type mockStorage struct {
	readFn  func(ctx context.Context) ([]domain.Measurement, error)
	writeFn func(ctx context.Context, log []domain.Measurement) error
}

func (m *mockStorage) ReadAll(ctx context.Context) ([]domain.Measurement, error) {
	if m.readFn != nil {
		return m.readFn(ctx)
	}
	return nil, nil
}

func (m *mockStorage) WriteAll(ctx context.Context, log []domain.Measurement) error {
	if m.writeFn != nil {
		return m.writeFn(ctx, log)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	ownerName     = "owner"
	ownerPassword = "correct horse"
)

type testEnv struct {
	ts      *httptest.Server
	history *app.HistoryStore
}

func newTestServer(t *testing.T, storage domain.HistoryStorage, withAuth bool) *testEnv {
	t.Helper()

	if storage == nil {
		storage = memory.New()
	}
	hs := app.NewHistoryStore(storage, app.WithLogger(quietLogger))
	if _, err := hs.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	ms := app.NewMetricsService(hs, domain.Sedentary)
	as := app.NewAnalyticsService(hs)

	hash, err := bcrypt.GenerateFromPassword([]byte(ownerPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	owner := domain.Owner{Username: ownerName, PasswordHash: string(hash)}
	authSvc := app.NewAuthService(owner, memory.New().NewSessionRepo())

	srv := adapthttp.New(ms, hs, as, authSvc, adapthttp.OIDCConfig{}, "", quietLogger)
	if !withAuth {
		srv = srv.WithoutAuth()
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, history: hs}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func postMetrics(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(payload)
	resp, err := http.Post(url+"/api/metrics", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode, decodeBody(t, resp)
}

var validMetrics = map[string]any{"weight": 70, "height": 175, "age": 30, "sex": "male", "unit": "metric"}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	env := newTestServer(t, nil, false)

	status, body := getJSON(t, env.ts.URL+"/api/health")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestMetricsPost(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
		wantField  string
	}{
		{
			name:       "valid metric",
			payload:    validMetrics,
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid imperial",
			payload:    map[string]any{"weight": 154, "height": 69, "age": 40, "sex": "f", "unit": "imperial"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "numbers as strings",
			payload:    map[string]any{"weight": "70.5", "height": "175", "age": "30", "sex": "male"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing weight",
			payload:    map[string]any{"height": 175, "age": 30, "sex": "male"},
			wantStatus: http.StatusBadRequest,
			wantField:  "weight",
		},
		{
			name:       "zero height",
			payload:    map[string]any{"weight": 70, "height": 0, "age": 30, "sex": "male"},
			wantStatus: http.StatusBadRequest,
			wantField:  "height",
		},
		{
			name:       "negative age",
			payload:    map[string]any{"weight": 70, "height": 175, "age": -1, "sex": "male"},
			wantStatus: http.StatusBadRequest,
			wantField:  "age",
		},
		{
			name:       "unknown sex",
			payload:    map[string]any{"weight": 70, "height": 175, "age": 30, "sex": "x"},
			wantStatus: http.StatusBadRequest,
			wantField:  "sex",
		},
		{
			name:       "unknown unit",
			payload:    map[string]any{"weight": 70, "height": 175, "age": 30, "sex": "male", "unit": "stone"},
			wantStatus: http.StatusBadRequest,
			wantField:  "unit",
		},
		{
			name:       "unknown field",
			payload:    map[string]any{"weight": 70, "height": 175, "age": 30, "sex": "male", "bmi": 5},
			wantStatus: http.StatusBadRequest,
		},
	}

	env := newTestServer(t, nil, false)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postMetrics(t, env.ts.URL, tc.payload)
			defer resp.Body.Close() //nolint:errcheck

			body := decodeBody(t, resp)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d; body: %v", tc.wantStatus, resp.StatusCode, body)
			}
			if tc.wantField != "" && body["field"] != tc.wantField {
				t.Errorf("expected field %q, got %v", tc.wantField, body["field"])
			}
		})
	}

	if got := len(env.history.All()); got != 3 {
		t.Errorf("expected 3 recorded measurements, got %d", got)
	}
}

func TestMetricsPost_Result(t *testing.T) {
	env := newTestServer(t, nil, false)

	resp := postMetrics(t, env.ts.URL, validMetrics)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res app.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.DisplayBMI != 22.86 {
		t.Errorf("displayBmi: got %v, want 22.86", res.DisplayBMI)
	}
	if res.DisplayBMR != 1649 {
		t.Errorf("displayBmr: got %v, want 1649", res.DisplayBMR)
	}
	if res.Measurement.Classification != domain.Normal {
		t.Errorf("classification: got %s", res.Measurement.Classification)
	}
	if res.Measurement.ID == "" || res.Measurement.Timestamp.IsZero() {
		t.Error("saved measurement should carry id and timestamp")
	}
	if res.IdealWeight.MinKg != 56.7 || res.IdealWeight.MaxKg != 76.3 {
		t.Errorf("ideal range: got %+v", res.IdealWeight)
	}
	if res.Plan == nil || res.Plan.Direction != domain.Maintain {
		t.Errorf("plan: got %+v", res.Plan)
	}
}

func TestMetricsPost_NoPlan(t *testing.T) {
	env := newTestServer(t, nil, false)

	resp := postMetrics(t, env.ts.URL, map[string]any{"weight": 10, "height": 60, "age": 80, "sex": "female"})
	defer resp.Body.Close() //nolint:errcheck

	body := decodeBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %v", resp.StatusCode, body)
	}
	if _, ok := body["plan"]; ok {
		t.Errorf("plan should be omitted, got %v", body["plan"])
	}
	if note, _ := body["planNote"].(string); note == "" {
		t.Error("expected planNote")
	}
	if len(env.history.All()) != 1 {
		t.Fatal("measurement should be recorded")
	}

	status, _ := getJSON(t, env.ts.URL+"/api/diet/latest")
	if status != http.StatusUnprocessableEntity {
		t.Errorf("diet for that measurement: expected 422, got %d", status)
	}
}

func TestMetricsPost_NotSaved(t *testing.T) {
	st := &mockStorage{
		writeFn: func(context.Context, []domain.Measurement) error {
			return errors.New("disk full")
		},
	}
	env := newTestServer(t, st, false)

	resp := postMetrics(t, env.ts.URL, validMetrics)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "measurement not saved" {
		t.Errorf("unexpected error message %v", body["error"])
	}
	if _, ok := body["result"].(map[string]any); !ok {
		t.Error("computed result should still be returned")
	}
	if len(env.history.All()) != 0 {
		t.Error("history should be unchanged")
	}
}

func TestHistoryGetAndClear(t *testing.T) {
	env := newTestServer(t, nil, false)
	for range 2 {
		resp := postMetrics(t, env.ts.URL, validMetrics)
		_ = resp.Body.Close()
	}

	status, body := getJSON(t, env.ts.URL+"/api/history")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if arr, _ := body["items"].([]any); len(arr) != 2 {
		t.Fatalf("expected 2 items, got %v", body["items"])
	}

	del := func(query string) int {
		req, _ := http.NewRequest(http.MethodDelete, env.ts.URL+"/api/history"+query, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	if got := del(""); got != http.StatusBadRequest {
		t.Fatalf("clear without confirm: expected 400, got %d", got)
	}
	if len(env.history.All()) != 2 {
		t.Fatal("history should survive an unconfirmed clear")
	}
	if got := del("?confirm=true"); got != http.StatusOK {
		t.Fatalf("confirmed clear: expected 200, got %d", got)
	}

	_, body = getJSON(t, env.ts.URL+"/api/history")
	arr, ok := body["items"].([]any)
	if !ok || len(arr) != 0 {
		t.Fatalf("expected empty items array, got %v", body["items"])
	}
}

func TestDietLatest(t *testing.T) {
	env := newTestServer(t, nil, false)

	status, _ := getJSON(t, env.ts.URL+"/api/diet/latest")
	if status != http.StatusNotFound {
		t.Fatalf("empty history: expected 404, got %d", status)
	}

	resp := postMetrics(t, env.ts.URL, map[string]any{"weight": 95, "height": 175, "age": 45, "sex": "male"})
	_ = resp.Body.Close()

	tests := []struct {
		query      string
		wantStatus int
		wantLevel  string
	}{
		{"", http.StatusOK, "sedentary"},
		{"?activity=active", http.StatusOK, "active"},
		{"?activity=Very_Active", http.StatusOK, "very_active"},
		{"?activity=couch", http.StatusBadRequest, ""},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			status, body := getJSON(t, env.ts.URL+"/api/diet/latest"+tc.query)
			if status != tc.wantStatus {
				t.Fatalf("expected %d, got %d; body: %v", tc.wantStatus, status, body)
			}
			if tc.wantLevel == "" {
				return
			}
			if body["activityLevel"] != tc.wantLevel {
				t.Errorf("activityLevel: got %v", body["activityLevel"])
			}
			if body["direction"] != "deficit" {
				t.Errorf("direction: got %v", body["direction"])
			}
		})
	}
}

func TestChartsZones(t *testing.T) {
	env := newTestServer(t, nil, false)

	status, body := getJSON(t, env.ts.URL+"/api/charts/zones")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	arr, ok := body["items"].([]any)
	if !ok || len(arr) != 4 {
		t.Fatalf("expected 4 zones, got %v", body["items"])
	}
	last := arr[3].(map[string]any)
	if last["classification"] != "Obese" || last["upper"] != nil {
		t.Errorf("unexpected last zone %v", last)
	}
}

func TestChartsSeriesAndStats(t *testing.T) {
	env := newTestServer(t, nil, false)

	status, body := getJSON(t, env.ts.URL+"/api/stats")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["count"] != 0.0 || body["average"] != nil {
		t.Fatalf("empty stats: got %v", body)
	}

	for _, w := range []int{60, 80} {
		resp := postMetrics(t, env.ts.URL, map[string]any{"weight": w, "height": 200, "age": 30, "sex": "male"})
		_ = resp.Body.Close()
	}

	_, body = getJSON(t, env.ts.URL+"/api/stats")
	if body["count"] != 2.0 || body["min"] != 15.0 || body["max"] != 20.0 || body["average"] != 17.5 {
		t.Errorf("stats: got %v", body)
	}

	_, body = getJSON(t, env.ts.URL+"/api/charts/series")
	arr, ok := body["items"].([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("expected 2 points, got %v", body["items"])
	}
	if arr[0].(map[string]any)["bmi"] != 15.0 {
		t.Errorf("first point: got %v", arr[0])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestServer(t, nil, false)

	for _, path := range []string{"/api/metrics", "/api/stats", "/api/charts/zones"} {
		req, _ := http.NewRequest(http.MethodPut, env.ts.URL+path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", path, resp.StatusCode)
		}
	}
}

func TestAuthGate(t *testing.T) {
	env := newTestServer(t, nil, true)

	status, _ := getJSON(t, env.ts.URL+"/api/health")
	if status != http.StatusOK {
		t.Fatalf("health should be public, got %d", status)
	}

	resp, err := http.Get(env.ts.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.StatusCode)
	}

	login := func(password string) *http.Response {
		b, _ := json.Marshal(map[string]string{"username": ownerName, "password": password})
		resp, err := http.Post(env.ts.URL+"/api/login", "application/json", bytes.NewReader(b))
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	resp = login("wrong")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", resp.StatusCode)
	}

	resp = login(ownerPassword)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("login should set a session cookie")
	}

	withCookie := func(method, path string) int {
		req, _ := http.NewRequest(method, env.ts.URL+path, nil)
		req.AddCookie(session)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	if got := withCookie(http.MethodGet, "/api/history"); got != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", got)
	}

	req, _ := http.NewRequest(http.MethodGet, env.ts.URL+"/api/auth/session", nil)
	req.AddCookie(session)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	info := decodeBody(t, resp)
	_ = resp.Body.Close()
	if info["username"] != ownerName || info["expires_at"] == nil {
		t.Errorf("unexpected session info %v", info)
	}
	if got := withCookie(http.MethodPost, "/api/logout"); got != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", got)
	}
	if got := withCookie(http.MethodGet, "/api/history"); got != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", got)
	}
}

func TestAuthConfig(t *testing.T) {
	env := newTestServer(t, nil, true)

	status, body := getJSON(t, env.ts.URL+"/api/auth/config")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["sso_enabled"] != false || body["auth_enabled"] != true {
		t.Errorf("unexpected config %v", body)
	}

	resp, err := http.Get(env.ts.URL + "/api/auth/sso/login")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("sso login without provider: expected 404, got %d", resp.StatusCode)
	}
}

func TestSessionWithoutAuth(t *testing.T) {
	env := newTestServer(t, nil, false)

	status, body := getJSON(t, env.ts.URL+"/api/auth/session")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["auth_enabled"] != false {
		t.Errorf("unexpected body %v", body)
	}
}

func TestNoCacheHeader(t *testing.T) {
	env := newTestServer(t, nil, false)

	resp, err := http.Get(env.ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if got := resp.Header.Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("expected no-store, got %q", got)
	}
}
