package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidToken          = errors.New("invalid or tampered approval token")
	ErrSecretUnavailable     = errors.New("signing secret unavailable")
	ErrCannotApprove         = errors.New("order cannot be approved at this time")
	ErrCannotRequestApproval = errors.New("order cannot be sent for approval")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrInvalidPayload        = errors.New("invalid webhook payload")
	ErrWebhookSecretUnset    = errors.New("webhook signing secret not configured")
	ErrVerifierUnavailable   = errors.New("webhook verification library unavailable")
	ErrGatewayKeyUnset       = errors.New("payment gateway secret key not configured")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidCurrency       = errors.New("invalid currency")
	ErrInvalidNonce          = errors.New("invalid or missing nonce")
	ErrSettingNotFound       = errors.New("setting not found")
)

// ErrorKind classifies failures so that delivery layers can pick a response
// without inspecting messages.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
	KindConfiguration
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	}
	return "internal"
}

type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(err error) error    { return &Error{Kind: KindValidation, Err: err} }
func AuthorizationError(err error) error { return &Error{Kind: KindAuthorization, Err: err} }
func NotFoundError(err error) error      { return &Error{Kind: KindNotFound, Err: err} }
func ConflictError(err error) error      { return &Error{Kind: KindConflict, Err: err} }
func ConfigurationError(err error) error { return &Error{Kind: KindConfiguration, Err: err} }
func UpstreamError(err error) error      { return &Error{Kind: KindUpstream, Err: err} }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
