package identity

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer delivers the account verification message. Delivery
// itself belongs to the mail infrastructure; the provider only
// hands over the address and the verification link.
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
}

type logMailer struct {
	logger zerolog.Logger
}

// NewLogMailer returns a Mailer that writes the verification link
// to the log instead of sending it. Useful for local and dev
// environments without an outbound mail relay.
func NewLogMailer(logger zerolog.Logger) Mailer {
	return logMailer{logger: logger}
}

func (m logMailer) SendVerification(_ context.Context, email, link string) error {
	m.logger.Info().
		Str("email", email).
		Str("link", link).
		Msg("verification email queued")
	return nil
}
