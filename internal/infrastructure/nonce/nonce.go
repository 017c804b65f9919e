package nonce

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ActionCreatePaymentIntent = "create_payment_intent"
	issuer                    = "pickup-settlement-service"
	generatedKeyBytes         = 32
)

type claims struct {
	jwt.RegisteredClaims
	Action string `json:"act"`
}

// Manager issues and checks short-lived anti-forgery nonces. A nonce is an
// HS256 JWT bound to one action.
type Manager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewManager signs with key. An empty key is replaced by a random one, which
// invalidates outstanding nonces on restart.
func NewManager(key string, ttl time.Duration) (*Manager, error) {
	raw := []byte(key)
	if len(raw) == 0 {
		raw = make([]byte, generatedKeyBytes)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("generate nonce key: %w", err)
		}
	}
	return &Manager{key: raw, ttl: ttl, now: time.Now}, nil
}

// Issue returns a nonce for action and its expiry.
func (m *Manager) Issue(action string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Action: action,
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign nonce: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, expiry and action. Every failure wraps
// domain.ErrInvalidNonce.
func (m *Manager) Verify(nonce, action string) error {
	nonce = strings.TrimSpace(nonce)
	if nonce == "" {
		return domain.ErrInvalidNonce
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(nonce, &parsed, func(*jwt.Token) (any, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: expired", domain.ErrInvalidNonce)
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidNonce, err)
	}
	if parsed.Action != action {
		return fmt.Errorf("%w: issued for %q", domain.ErrInvalidNonce, parsed.Action)
	}
	return nil
}
