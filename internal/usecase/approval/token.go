package approval

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"
)

// Issue derives the capability token for one order: lowercase hex
// HMAC-SHA256 over "{id}|{order_key}".
func Issue(orderID int64, orderKey, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(tokenMessage(orderID, orderKey)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the token and compares in constant time.
func Verify(orderID int64, orderKey, token, secret string) bool {
	if token == "" || secret == "" {
		return false
	}
	expected := Issue(orderID, orderKey, secret)
	return hmac.Equal([]byte(expected), []byte(token))
}

func tokenMessage(orderID int64, orderKey string) string {
	return strconv.FormatInt(orderID, 10) + "|" + orderKey
}

// Keyring holds the current signing secret and, during a rotation, the
// secrets it replaced. Previous secrets verify only until PreviousValidUntil.
type Keyring struct {
	current            string
	previous           []string
	previousValidUntil time.Time
	now                func() time.Time
}

func NewKeyring(current string, previous []string, previousValidUntil time.Time) *Keyring {
	var prev []string
	for _, p := range previous {
		if p != "" && p != current {
			prev = append(prev, p)
		}
	}
	return &Keyring{
		current:            current,
		previous:           prev,
		previousValidUntil: previousValidUntil,
		now:                time.Now,
	}
}

func (k *Keyring) Issue(orderID int64, orderKey string) string {
	return Issue(orderID, orderKey, k.current)
}

func (k *Keyring) Verify(orderID int64, orderKey, token string) bool {
	if k == nil || k.current == "" {
		return false
	}
	if Verify(orderID, orderKey, token, k.current) {
		return true
	}
	if len(k.previous) == 0 || !k.now().Before(k.previousValidUntil) {
		return false
	}
	for _, secret := range k.previous {
		if Verify(orderID, orderKey, token, secret) {
			return true
		}
	}
	return false
}

// URL builds the customer-facing approval link on top of baseURL.
func URL(baseURL string, orderID int64, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("approve_order", "1")
	q.Set("order_id", strconv.FormatInt(orderID, 10))
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
