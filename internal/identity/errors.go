package identity

import "errors"

// ErrorKind classifies provider failures so callers can branch on
// the category instead of matching on message text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidCredentials
	KindEmailNotVerified
	KindEmailTaken
	KindSessionNotFound
	KindSessionExpired
	KindVerificationInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindEmailNotVerified:
		return "email_not_verified"
	case KindEmailTaken:
		return "email_taken"
	case KindSessionNotFound:
		return "session_not_found"
	case KindSessionExpired:
		return "session_expired"
	case KindVerificationInvalid:
		return "verification_invalid"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidCredentials  = &Error{KindInvalidCredentials, "invalid email or password"}
	ErrEmailNotVerified    = &Error{KindEmailNotVerified, "email not verified"}
	ErrEmailTaken          = &Error{KindEmailTaken, "email already registered"}
	ErrSessionNotFound     = &Error{KindSessionNotFound, "session not found"}
	ErrSessionExpired      = &Error{KindSessionExpired, "session expired"}
	ErrVerificationInvalid = &Error{KindVerificationInvalid, "invalid verification token"}
)

// KindOf reports the kind of err, or KindUnknown for
// errors that did not come from the provider.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
