// Package auth implements signed-cookie sessions and the request principal.
//
// A principal is resolved exactly once, at login, into an explicit tagged
// value: either an administrator (User record) or a client (Client record).
// Everything downstream branches on Principal.Kind instead of inspecting the
// concrete account type at runtime.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Kind distinguishes the two account kinds sharing the login flow.
type Kind string

const (
	KindAdmin  Kind = "admin"
	KindClient Kind = "client"
)

// Principal identifies the authenticated caller. Admins carry a User ID,
// clients a Client ID.
type Principal struct {
	Kind Kind
	ID   uint
}

// IsAdmin reports whether the principal has administrator capability.
func (p Principal) IsAdmin() bool { return p.Kind == KindAdmin }

// IsZero reports whether the principal is unset (no authenticated caller).
func (p Principal) IsZero() bool { return p.Kind == "" || p.ID == 0 }

type ctxKey string

const (
	sessionCookieName = "session"
	principalCtxKey   = ctxKey("principal")
)

// Verifier is an optional callback validating that a session's principal
// still refers to an existing account. Set during app bootstrap via
// SetVerifier; if nil, no extra verification is performed.
type Verifier func(ctx context.Context, p Principal) bool

var verifier Verifier

// SetVerifier configures the global verifier used by RequireAuth.
func SetVerifier(v Verifier) { verifier = v }

// Secret returns SESSION_SECRET or a default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

func kindTag(k Kind) string {
	if k == KindAdmin {
		return "a"
	}
	return "c"
}

func sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie encoding the principal.
func CreateSession(w http.ResponseWriter, p Principal) {
	payload := kindTag(p.Kind) + ":" + strconv.FormatUint(uint64(p.ID), 10)
	value := payload + "." + sign(payload)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie signature and returns the principal.
func ParseSession(r *http.Request) (Principal, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return Principal{}, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return Principal{}, false
	}
	payload, sig := parts[0], parts[1]
	if !hmac.Equal([]byte(sig), []byte(sign(payload))) {
		return Principal{}, false
	}
	kv := strings.SplitN(payload, ":", 2)
	if len(kv) != 2 {
		return Principal{}, false
	}
	id64, err := strconv.ParseUint(kv[1], 10, 64)
	if err != nil || id64 == 0 {
		return Principal{}, false
	}
	switch kv[0] {
	case "a":
		return Principal{Kind: KindAdmin, ID: uint(id64)}, true
	case "c":
		return Principal{Kind: KindClient, ID: uint(id64)}, true
	}
	return Principal{}, false
}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext extracts the principal set by Middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	if !ok || p.IsZero() {
		return Principal{}, false
	}
	return p, true
}

// Middleware attaches the session principal to the request context if present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := ParseSession(r); ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, `{"error":"unauthorized"}`)
}

// RequireAuth rejects requests without a valid session principal. If a
// verifier is configured and the account no longer exists, the stale session
// is cleared and the request treated as unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if verifier != nil && !verifier(r.Context(), p) {
			ClearSession(w)
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose principal is not an administrator.
// Chain after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if !p.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":"forbidden"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}
