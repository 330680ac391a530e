package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pupped/storefront/internal/models"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrSessionSecretMissing is returned by Save when no secret was configured.
var ErrSessionSecretMissing = errors.New("session secret is not configured")

// Session is the decoded admin session. The zero value is an anonymous visitor.
type Session struct {
	IsAdmin   bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionConfig holds session cookie settings
type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// SessionManager issues and reads the admin session cookie. The cookie value
// is an HS256 JWT sealed with NaCl secretbox.
type SessionManager struct {
	cookie  CookieConfig
	maxAge  time.Duration
	signKey []byte
	sealKey *[32]byte
	now     func() time.Time
	logger  *slog.Logger
}

// NewSessionManager derives the signing and sealing keys from the secret.
// An empty secret yields a manager whose Get always returns an empty session.
func NewSessionManager(cfg SessionConfig, logger *slog.Logger) (*SessionManager, error) {
	sm := &SessionManager{
		cookie: CookieConfig{
			Name:     cfg.CookieName,
			Secure:   cfg.Secure,
			SameSite: "lax",
		},
		maxAge: cfg.MaxAge,
		now:    time.Now,
		logger: logger,
	}

	if cfg.Secret == "" {
		logger.Warn("session secret not configured, admin sessions disabled")
		return sm, nil
	}

	signKey, err := deriveKey(cfg.Secret, "storefront session signing")
	if err != nil {
		return nil, err
	}
	sealKey, err := deriveKey(cfg.Secret, "storefront session sealing")
	if err != nil {
		return nil, err
	}

	sm.signKey = signKey
	sm.sealKey = new([32]byte)
	copy(sm.sealKey[:], sealKey)

	return sm, nil
}

func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	return key, nil
}

// Get resolves the session carried by the request. Any failure (no secret,
// no cookie, bad encoding, bad seal, bad signature, expiry) yields an empty
// session.
func (sm *SessionManager) Get(r *http.Request) Session {
	if sm.sealKey == nil {
		return Session{}
	}

	value, err := GetSessionCookie(r, sm.cookie.Name)
	if err != nil || value == "" {
		return Session{}
	}

	session, err := sm.open(value)
	if err != nil {
		sm.logger.Debug("discarding invalid session cookie", slog.Any("error", err))
		return Session{}
	}

	return session
}

// IsAuthenticated reports whether the request carries an admin session
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.Get(r).IsAdmin
}

// Save seals the session and sets the cookie. Issued-at and expiry are
// stamped from the manager's clock.
func (sm *SessionManager) Save(w http.ResponseWriter, s Session) error {
	if sm.sealKey == nil {
		return ErrSessionSecretMissing
	}

	now := sm.now()
	claims := &models.SessionClaims{
		IsAdmin: s.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.maxAge)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.signKey)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("failed to generate session nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(token), &nonce, sm.sealKey)
	SetSessionCookie(w, base64.RawURLEncoding.EncodeToString(sealed), sm.maxAge, now, sm.cookie)

	return nil
}

// Destroy clears the session cookie
func (sm *SessionManager) Destroy(w http.ResponseWriter) {
	ClearSessionCookie(w, sm.cookie)
}

func (sm *SessionManager) open(value string) (Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Session{}, fmt.Errorf("decode: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return Session{}, errors.New("cookie too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	token, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, sm.sealKey)
	if !ok {
		return Session{}, errors.New("seal verification failed")
	}

	claims := &models.SessionClaims{}
	_, err = jwt.ParseWithClaims(string(token), claims,
		func(t *jwt.Token) (interface{}, error) { return sm.signKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(sm.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("parse: %w", err)
	}

	s := Session{IsAdmin: claims.IsAdmin}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
