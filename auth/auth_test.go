package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sessionRequest(t *testing.T, p Principal) *http.Request {
	t.Helper()
	w := httptest.NewRecorder()
	CreateSession(w, p)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		p    Principal
	}{
		{"admin", Principal{Kind: KindAdmin, ID: 7}},
		{"client", Principal{Kind: KindClient, ID: 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sessionRequest(t, tt.p)
			got, ok := ParseSession(req)
			if !ok {
				t.Fatal("ParseSession rejected a freshly created session")
			}
			if got != tt.p {
				t.Errorf("ParseSession = %+v, want %+v", got, tt.p)
			}
		})
	}
}

func TestParseSession_TamperedSignature(t *testing.T) {
	req := sessionRequest(t, Principal{Kind: KindClient, ID: 42})
	c, err := req.Cookie("session")
	if err != nil {
		t.Fatal(err)
	}
	// swap the client tag for the admin tag without re-signing
	forged := strings.Replace(c.Value, "c:", "a:", 1)
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(&http.Cookie{Name: "session", Value: forged})
	if _, ok := ParseSession(req2); ok {
		t.Error("ParseSession accepted a tampered cookie")
	}
}

func TestParseSession_MissingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ParseSession(req); ok {
		t.Error("ParseSession accepted a request without a cookie")
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(next)

	adminReq := httptest.NewRequest(http.MethodGet, "/", nil)
	adminReq = adminReq.WithContext(WithPrincipal(adminReq.Context(), Principal{Kind: KindAdmin, ID: 1}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, adminReq)
	if w.Code != http.StatusOK {
		t.Errorf("admin got %d, want 200", w.Code)
	}

	clientReq := httptest.NewRequest(http.MethodGet, "/", nil)
	clientReq = clientReq.WithContext(WithPrincipal(clientReq.Context(), Principal{Kind: KindClient, ID: 2}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, clientReq)
	if w.Code != http.StatusForbidden {
		t.Errorf("client got %d, want 403", w.Code)
	}

	anonReq := httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, anonReq)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous got %d, want 401", w.Code)
	}
}
