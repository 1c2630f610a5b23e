package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Admin session primitives =====

const sessionCookieName = "admin_session"

// AuthManager mints and verifies short-lived admin session tokens. Login
// exchanges the static admin API key for a JWT carried in a cookie or a
// bearer header; destructive job endpoints require a valid session.
type AuthManager struct {
	secret       []byte
	apiKey       string
	secureCookie bool
	ttl          time.Duration
}

// NewAuthManager fails when admin access is enabled without a signing
// secret: sessions minted with an empty key would be forgeable.
func NewAuthManager(secret, apiKey string, secureCookie bool, ttl time.Duration) (*AuthManager, error) {
	if apiKey != "" && secret == "" {
		return nil, errors.New("admin api key set without a jwt secret")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthManager{
		secret:       []byte(secret),
		apiKey:       apiKey,
		secureCookie: secureCookie,
		ttl:          ttl,
	}, nil
}

// CheckAPIKey compares in constant time; an empty configured key disables
// admin access entirely.
func (a *AuthManager) CheckAPIKey(candidate string) bool {
	if a.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.apiKey)) == 1
}

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint issues a session token and sets it as an HttpOnly cookie.
func (a *AuthManager) Mint(w http.ResponseWriter) (string, error) {
	now := time.Now()
	claims := adminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   "admin",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return signed, nil
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// ParseFromRequest accepts either "Authorization: Bearer <jwt>" or the
// session cookie.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*adminClaims, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return a.parse(c.Value)
	}
	return nil, errors.New("missing token")
}

func (a *AuthManager) parse(tok string) (*adminClaims, error) {
	claims := &adminClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
