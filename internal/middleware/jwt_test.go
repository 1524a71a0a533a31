package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const jwtTestSecret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestJWTMiddleware_ExtractsSubAsOwner(t *testing.T) {
	var gotOwner string
	h := JWTMiddleware([]byte(jwtTestSecret))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner, _ = OwnerID(r.Context())
	}))

	token := signedToken(t, jwt.MapClaims{
		"sub": "user-7",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte(jwtTestSecret))

	req := httptest.NewRequest("GET", "/api/monitors", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if gotOwner != "user-7" {
		t.Errorf("owner: got %q, want user-7", gotOwner)
	}
}

func TestJWTMiddleware_RejectsMissingHeader(t *testing.T) {
	h := JWTMiddleware([]byte(jwtTestSecret))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	req := httptest.NewRequest("GET", "/api/monitors", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestJWTMiddleware_RejectsMissingSub(t *testing.T) {
	h := JWTMiddleware([]byte(jwtTestSecret))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()},
		jwt.SigningMethodHS256, []byte(jwtTestSecret))

	req := httptest.NewRequest("GET", "/api/monitors", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestJWTMiddleware_RejectsExpiredToken(t *testing.T) {
	h := JWTMiddleware([]byte(jwtTestSecret))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	token := signedToken(t, jwt.MapClaims{
		"sub": "user-7",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte(jwtTestSecret))

	req := httptest.NewRequest("GET", "/api/monitors", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}
