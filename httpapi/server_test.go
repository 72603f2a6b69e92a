package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	pairlock "github.com/pairlock/pairlock"
)

func newTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := pairlock.DefaultConfig()
	cfg.Token.PrivateKey = []byte("httpapi-test-secret-0123456789")
	engine, err := pairlock.New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		mr.Close()
		t.Fatalf("build engine: %v", err)
	}

	return NewServer(engine, nil), func() {
		engine.Close()
		rdb.Close()
		mr.Close()
	}
}

type testRequest struct {
	method     string
	path       string
	body       any
	bearer     string
	userAgent  string
	remoteAddr string
}

func do(t *testing.T, srv *Server, req testRequest) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()

	var body *bytes.Buffer
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	if req.bearer != "" {
		r.Header.Set("Authorization", "Bearer "+req.bearer)
	}
	if req.userAgent != "" {
		r.Header.Set("User-Agent", req.userAgent)
	}
	if req.remoteAddr != "" {
		r.RemoteAddr = req.remoteAddr
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	decoded := map[string]string{}
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func issueTokens(t *testing.T, srv *Server, userID, userAgent, remoteAddr string) (string, string) {
	t.Helper()
	w, body := do(t, srv, testRequest{
		method:     http.MethodPost,
		path:       "/auth/token",
		body:       map[string]string{"user_id": userID},
		userAgent:  userAgent,
		remoteAddr: remoteAddr,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("issue: status %d body %s", w.Code, w.Body.String())
	}
	return body["access_token"], body["refresh_token"]
}

func TestTokenEndpoint(t *testing.T) {
	srv, done := newTestServer(t)
	defer done()

	access, refresh := issueTokens(t, srv, "u-1", "ua-v1", "203.0.113.1:4242")
	if access == "" || refresh == "" {
		t.Fatal("expected both tokens in response")
	}

	w, body := do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/auth/token",
		body:   map[string]string{"user_id": ""},
	})
	if w.Code != http.StatusBadRequest || body["error"] != "Empty user id" {
		t.Fatalf("expected 400 Empty user id, got %d %s", w.Code, w.Body.String())
	}

	r := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString("{not json"))
	w2 := httptest.NewRecorder()
	srv.ServeHTTP(w2, r)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", w2.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	srv, done := newTestServer(t)
	defer done()

	access, _ := issueTokens(t, srv, "u-1", "ua-v1", "203.0.113.1:4242")

	w, body := do(t, srv, testRequest{
		method: http.MethodGet,
		path:   "/auth/me",
		bearer: access,
	})
	if w.Code != http.StatusOK || body["user_id"] != "u-1" {
		t.Fatalf("expected user id response, got %d %s", w.Code, w.Body.String())
	}

	w, body = do(t, srv, testRequest{
		method: http.MethodGet,
		path:   "/auth/me",
	})
	if w.Code != http.StatusUnauthorized || body["error"] != "Authorization required" {
		t.Fatalf("expected 401 Authorization required, got %d %s", w.Code, w.Body.String())
	}

	w, body = do(t, srv, testRequest{
		method: http.MethodGet,
		path:   "/auth/me",
		bearer: "garbage",
	})
	if w.Code != http.StatusUnauthorized || body["error"] != "Invalid token" {
		t.Fatalf("expected 401 Invalid token, got %d %s", w.Code, w.Body.String())
	}
}

func TestRefreshEndpoint(t *testing.T) {
	srv, done := newTestServer(t)
	defer done()

	access, refresh := issueTokens(t, srv, "u-1", "ua-v1", "203.0.113.1:4242")

	w, body := do(t, srv, testRequest{
		method:     http.MethodPost,
		path:       "/auth/refresh",
		body:       map[string]string{"refresh_token": refresh},
		bearer:     access,
		userAgent:  "ua-v1",
		remoteAddr: "203.0.113.1:4242",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: status %d body %s", w.Code, w.Body.String())
	}
	if body["access_token"] == "" || body["access_token"] == access {
		t.Fatal("expected fresh access token")
	}

	// Replay of the consumed pair.
	w, body = do(t, srv, testRequest{
		method:     http.MethodPost,
		path:       "/auth/refresh",
		body:       map[string]string{"refresh_token": refresh},
		bearer:     access,
		userAgent:  "ua-v1",
		remoteAddr: "203.0.113.1:4242",
	})
	if w.Code != http.StatusUnauthorized || body["error"] != "Token revoked" {
		t.Fatalf("expected 401 Token revoked, got %d %s", w.Code, w.Body.String())
	}
}

func TestRefreshEndpointDeviceChange(t *testing.T) {
	srv, done := newTestServer(t)
	defer done()

	access, refresh := issueTokens(t, srv, "u-1", "ua-v1", "203.0.113.1:4242")

	w, body := do(t, srv, testRequest{
		method:     http.MethodPost,
		path:       "/auth/refresh",
		body:       map[string]string{"refresh_token": refresh},
		bearer:     access,
		userAgent:  "ua-v2",
		remoteAddr: "203.0.113.1:4242",
	})
	if w.Code != http.StatusUnauthorized || body["error"] != "User-Agent changed" {
		t.Fatalf("expected 401 User-Agent changed, got %d %s", w.Code, w.Body.String())
	}
}

func TestRefreshEndpointCrossPair(t *testing.T) {
	srv, done := newTestServer(t)
	defer done()

	access, _ := issueTokens(t, srv, "u-1", "ua-v1", "203.0.113.1:4242")
	_, otherRefresh := issueTokens(t, srv, "u-2", "ua-v1", "203.0.113.1:4242")

	w, body := do(t, srv, testRequest{
		method:     http.MethodPost,
		path:       "/auth/refresh",
		body:       map[string]string{"refresh_token": otherRefresh},
		bearer:     access,
		userAgent:  "ua-v1",
		remoteAddr: "203.0.113.1:4242",
	})
	if w.Code != http.StatusUnauthorized || body["error"] != "Incorrect tokens pair" {
		t.Fatalf("expected 401 Incorrect tokens pair, got %d %s", w.Code, w.Body.String())
	}
}

func TestLogoutEndpoint(t *testing.T) {
	srv, done := newTestServer(t)
	defer done()

	access, _ := issueTokens(t, srv, "u-1", "ua-v1", "203.0.113.1:4242")

	w, body := do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/auth/logout",
		bearer: access,
	})
	if w.Code != http.StatusOK || body["success"] != "Successfully logged out" {
		t.Fatalf("expected logout success, got %d %s", w.Code, w.Body.String())
	}

	// Logout is idempotent at the HTTP layer too.
	w, _ = do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/auth/logout",
		bearer: access,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected second logout to succeed, got %d", w.Code)
	}

	w, body = do(t, srv, testRequest{
		method: http.MethodGet,
		path:   "/auth/me",
		bearer: access,
	})
	if w.Code != http.StatusUnauthorized || body["error"] != "Token revoked" {
		t.Fatalf("expected 401 Token revoked after logout, got %d %s", w.Code, w.Body.String())
	}
}

func TestClientOriginPrefersForwardedHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5123"
	if got := clientOrigin(r); got != "10.0.0.1" {
		t.Fatalf("expected peer host, got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientOrigin(r); got != "203.0.113.9" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}
}
