package identity

import (
	"context"
	"time"
)

// Identity is the resolved authenticated context for one request.
type Identity struct {
	UserID    string
	Email     string
	SessionID string
}

type SignInParams struct {
	Email       string
	Password    string
	Fingerprint string
}

// Session is a freshly issued token pair.
type Session struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// Provider is the identity boundary of the application. Every call
// returns either a plain result or an *Error whose Kind callers can
// inspect with KindOf.
type Provider interface {
	// CurrentUser resolves the identity behind an access token.
	//
	// It returns ErrSessionExpired for an expired access token
	// (the caller may then try Refresh) and ErrSessionNotFound
	// for any other token or fingerprint problem.
	CurrentUser(ctx context.Context, accessToken, fingerprint string) (*Identity, error)

	// SignIn authenticates by email and password and issues a new
	// token pair, replacing any session bound to the same fingerprint.
	//
	// It returns ErrInvalidCredentials for an unknown email or a
	// password mismatch and ErrEmailNotVerified when the account
	// exists but has not confirmed its address yet.
	SignIn(ctx context.Context, params SignInParams) (*Session, error)

	// SignUp creates an unverified account and sends the
	// verification message through the configured Mailer. No
	// session is issued; the account must confirm its address
	// before it can sign in. The new user id is returned.
	//
	// It returns ErrEmailTaken if the address is already registered.
	SignUp(ctx context.Context, email, password string) (string, error)

	// Refresh rotates the token pair bound to refreshToken.
	//
	// It returns ErrSessionNotFound if no session matches the token
	// and fingerprint, or ErrSessionExpired for a stale session.
	Refresh(ctx context.Context, refreshToken, fingerprint string) (*Session, error)

	// SignOut invalidates every session of the given user.
	SignOut(ctx context.Context, userID string) error

	// Verify marks the account holding the given verification
	// token as confirmed. It returns ErrVerificationInvalid for
	// an unknown or already consumed token.
	Verify(ctx context.Context, token string) error
}
