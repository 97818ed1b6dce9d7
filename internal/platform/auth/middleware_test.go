package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func createTestToken(t *testing.T, claims Claims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tokenStr
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func expectStatus(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d", code)
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != code {
		t.Errorf("expected %d, got %d", code, httpErr.Code)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})(okHandler)(c)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})(okHandler)(c)
			expectStatus(t, err, http.StatusUnauthorized)
		})
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "healthassist",
		},
		Roles: []string{RolePatient},
	}
	token := createTestToken(t, claims, testSigningKey)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUser string
	var gotRoles []string
	handler := func(c echo.Context) error {
		gotUser = UserIDFromContext(c.Request().Context())
		gotRoles = RolesFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	}

	err := JWTMiddleware(JWTConfig{SigningKey: testSigningKey, Issuer: "healthassist"})(handler)(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "user-123" {
		t.Errorf("expected user-123, got %q", gotUser)
	}
	if len(gotRoles) != 1 || gotRoles[0] != RolePatient {
		t.Errorf("expected [patient], got %v", gotRoles)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	e := echo.New()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := createTestToken(t, claims, testSigningKey)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})(okHandler)(c)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_WrongIssuerAndKey(t *testing.T) {
	tests := []struct {
		name string
		cfg  JWTConfig
		key  []byte
	}{
		{"wrong issuer", JWTConfig{SigningKey: testSigningKey, Issuer: "other"}, testSigningKey},
		{"wrong key", JWTConfig{SigningKey: testSigningKey}, []byte("another-key")},
		{"wrong audience", JWTConfig{SigningKey: testSigningKey, Audience: "api"}, testSigningKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u",
				Issuer:    "healthassist",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}}
			token := createTestToken(t, claims, tt.key)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			c := e.NewContext(req, httptest.NewRecorder())

			err := JWTMiddleware(tt.cfg)(okHandler)(c)
			expectStatus(t, err, http.StatusUnauthorized)
		})
	}
}

func TestJWTMiddleware_Skipper(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/health")

	err := JWTMiddleware(JWTConfig{SigningKey: testSigningKey, Skipper: AuthSkipper})(okHandler)(c)
	if err != nil {
		t.Fatalf("expected public path to skip auth, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestDevAuthMiddleware_NoToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var roles []string
	handler := func(c echo.Context) error {
		roles = RolesFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	}

	if err := DevAuthMiddleware(JWTConfig{})(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roles) != 1 || roles[0] != RoleAdmin {
		t.Errorf("expected [admin], got %v", roles)
	}
	if UserIDFromContext(c.Request().Context()) != "dev-user" {
		t.Error("expected dev-user identity")
	}
}

func TestDevAuthMiddleware_ValidatesProvidedToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	c := e.NewContext(req, httptest.NewRecorder())

	err := DevAuthMiddleware(JWTConfig{SigningKey: testSigningKey})(okHandler)(c)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTConfig_Enabled(t *testing.T) {
	if (JWTConfig{}).Enabled() {
		t.Error("expected empty config to be disabled")
	}
	if !(JWTConfig{SigningKey: testSigningKey}).Enabled() {
		t.Error("expected signing key to enable validation")
	}
	if !(JWTConfig{JWKSURL: "https://example.com/jwks"}).Enabled() {
		t.Error("expected JWKS URL to enable validation")
	}
}
