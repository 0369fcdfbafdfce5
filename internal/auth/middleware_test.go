package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/kidspeak/internal/auth"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func claimsFor(sub string, exp time.Duration) *auth.Claims {
	return &auth.Claims{
		Email: "kid@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp)),
		},
	}
}

// echoUser answers 200 with the user id, or "anonymous".
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.UserIDFromContext(r.Context()); ok {
		w.Write([]byte(id.String()))
		return
	}
	w.Write([]byte("anonymous"))
})

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	valid := sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor(user.String(), time.Hour))
	expired := sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor(user.String(), -time.Hour))
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor(user.String(), time.Hour))
	badSub := sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor("not-a-uuid", time.Hour))
	noExp := sign(t, jwt.SigningMethodHS256, []byte(secret), &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: user.String()}})
	wrongAlg := sign(t, jwt.SigningMethodHS384, []byte(secret), claimsFor(user.String(), time.Hour))

	tests := []struct {
		name     string
		optional bool
		header   string
		status   int
		body     string
	}{
		{"valid", false, "Bearer " + valid, http.StatusOK, user.String()},
		{"lowercase scheme", false, "bearer " + valid, http.StatusOK, user.String()},
		{"missing", false, "", http.StatusUnauthorized, ""},
		{"missing optional", true, "", http.StatusOK, "anonymous"},
		{"expired", true, "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong key", false, "Bearer " + wrongKey, http.StatusUnauthorized, ""},
		{"bad subject", false, "Bearer " + badSub, http.StatusUnauthorized, ""},
		{"no expiry", false, "Bearer " + noExp, http.StatusUnauthorized, ""},
		{"wrong algorithm", false, "Bearer " + wrongAlg, http.StatusUnauthorized, ""},
		{"basic auth", false, "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := auth.NewJWTMiddleware(secret, tt.optional).Authenticate(echoUser)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body, tt.body)
			}
		})
	}
}

func TestAuthenticate_Claims(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	token := sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor(user.String(), time.Hour))

	var got *auth.Claims
	h := auth.NewJWTMiddleware(secret, false).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.ClaimsFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Email != "kid@example.com" || got.Role != "authenticated" || got.Subject != user.String() {
		t.Errorf("claims = %+v", got)
	}
}

func TestRequireUser(t *testing.T) {
	t.Parallel()

	h := auth.NewJWTMiddleware(secret, true).Authenticate(auth.RequireUser(echoUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", rec.Code)
	}

	user := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor(user.String(), time.Hour)))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != user.String() {
		t.Errorf("signed-in: %d %q", rec.Code, rec.Body)
	}
}
