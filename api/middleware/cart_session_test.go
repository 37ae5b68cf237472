package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestCartSessionMintsGuestSession(t *testing.T) {
	var captured string
	handler := CartSession(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured == "" {
		t.Fatal("expected a minted session id in context")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Fatalf("minted session id is not a uuid: %v", err)
	}
	if echoed := resp.Header().Get("X-Session-Id"); echoed != captured {
		t.Fatalf("expected header echo %q got %q", captured, echoed)
	}
}

func TestCartSessionReusesProvidedHeader(t *testing.T) {
	sessionID := uuid.NewString()

	var captured string
	handler := CartSession(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-Id", sessionID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured != sessionID {
		t.Fatalf("expected session %s got %s", sessionID, captured)
	}
}

func TestCartSessionSkipsAuthenticatedRequests(t *testing.T) {
	authSession := uuid.NewString()

	var captured string
	handler := CartSession(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-Id", uuid.NewString())
	req = req.WithContext(WithSessionID(req.Context(), authSession))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured != authSession {
		t.Fatalf("authenticated session must win, expected %s got %s", authSession, captured)
	}
	if resp.Header().Get("X-Session-Id") != "" {
		t.Fatal("no header echo expected for authenticated requests")
	}
}
