package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func requestWithToken(token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "patient-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"patient"},
	})

	c, _ := requestWithToken(token)
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	var gotUser string
	var gotRoles []string
	err := mw(func(c echo.Context) error {
		gotUser = UserIDFromContext(c.Request().Context())
		gotRoles = RolesFromContext(c.Request().Context())
		return okHandler(c)
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "patient-1" {
		t.Errorf("expected subject patient-1, got %q", gotUser)
	}
	if len(gotRoles) != 1 || gotRoles[0] != "patient" {
		t.Errorf("expected roles [patient], got %v", gotRoles)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	c, _ := requestWithToken("")
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	err := mw(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "patient-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	c, _ := requestWithToken(token)
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	err := mw(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", err)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "patient-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, _ := token.SignedString([]byte("other-key"))

	c, _ := requestWithToken(s)
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	err := mw(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong signing key, got %v", err)
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	c, _ := requestWithToken("")
	var gotRoles []string
	err := DevAuthMiddleware()(func(c echo.Context) error {
		gotRoles = RolesFromContext(c.Request().Context())
		return okHandler(c)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotRoles) != 1 || gotRoles[0] != "admin" {
		t.Errorf("expected [admin], got %v", gotRoles)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		has      []string
		required []string
		allowed  bool
	}{
		{"exact match", []string{"doctor"}, []string{"doctor"}, true},
		{"admin bypass", []string{"admin"}, []string{"doctor"}, true},
		{"one of several", []string{"patient"}, []string{"patient", "doctor"}, true},
		{"no match", []string{"patient"}, []string{"doctor"}, false},
		{"no roles", nil, []string{"patient"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var err error
			if tc.has == nil {
				c, _ := requestWithToken("")
				err = RequireRole(tc.required...)(okHandler)(c)
			} else {
				token := signToken(t, Claims{
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "u",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
					Roles: tc.has,
				})
				c, _ := requestWithToken(token)
				mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
				err = mw(func(c echo.Context) error {
					return RequireRole(tc.required...)(okHandler)(c)
				})(c)
			}

			if tc.allowed && err != nil {
				t.Errorf("expected allowed, got %v", err)
			}
			if !tc.allowed {
				httpErr, ok := err.(*echo.HTTPError)
				if !ok || httpErr.Code != http.StatusForbidden {
					t.Errorf("expected 403, got %v", err)
				}
			}
		})
	}
}
