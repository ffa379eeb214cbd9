package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"todoweb/internal/models"
)

type postgresProvider struct {
	logger          zerolog.Logger
	pgPool          *pgxpool.Pool
	mailer          Mailer
	baseURL         string
	jwtIssuer       string
	jwtSigningKey   []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewPostgresProvider(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	mailer Mailer,
	baseURL string,
	jwtIssuer string,
	jwtSigningKey []byte,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) Provider {
	return &postgresProvider{
		logger:          logger,
		pgPool:          pgPool,
		mailer:          mailer,
		baseURL:         baseURL,
		jwtIssuer:       jwtIssuer,
		jwtSigningKey:   jwtSigningKey,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (p *postgresProvider) CurrentUser(ctx context.Context, accessToken, fingerprint string) (*Identity, error) {
	claims, err := p.parseAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		p.logger.Debug().
			Err(err).
			Msg("failed to parse access token")
		return nil, ErrSessionNotFound
	}

	ident := Identity{
		SessionID: claims.Subject,
	}

	const selectSessionUserQuery = `
SELECT s.user_id,
       s.fingerprint,
       u.email
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.id = $1
`
	var sessionFingerprint string
	err = p.pgPool.QueryRow(
		ctx,
		selectSessionUserQuery,
		ident.SessionID,
	).Scan(
		&ident.UserID,
		&sessionFingerprint,
		&ident.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn().
				Str("session_id", ident.SessionID).
				Msg("session not found")
			return nil, ErrSessionNotFound
		}

		p.logger.Error().
			Err(err).
			Str("session_id", ident.SessionID).
			Msg("failed to select session user")
		return nil, err
	}

	if sessionFingerprint != fingerprint {
		p.logger.Warn().
			Str("session_id", ident.SessionID).
			Msg("fingerprint mismatch")
		return nil, ErrSessionNotFound
	}

	return &ident, nil
}

func (p *postgresProvider) SignIn(ctx context.Context, params SignInParams) (*Session, error) {
	user := models.User{
		Email: params.Email,
	}

	const selectUserByEmailQuery = `
SELECT id,
       password,
       email_verified
FROM users
WHERE email = $1
`
	err := p.pgPool.QueryRow(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(
		&user.ID,
		&user.Password,
		&user.EmailVerified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn().
				Str("email", user.Email).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		p.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to select user by email")
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.Password)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	}
	if !match {
		p.logger.Warn().
			Str("email", user.Email).
			Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		p.logger.Warn().
			Str("email", user.Email).
			Msg("email not verified")
		return nil, ErrEmailNotVerified
	}

	tx, err := p.pgPool.Begin(ctx)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteSessionsQuery = `
DELETE FROM sessions
WHERE user_id = $1 AND fingerprint = $2
`
	tag, err := tx.Exec(
		ctx,
		deleteSessionsQuery,
		user.ID,
		params.Fingerprint,
	)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to delete stale sessions")
		return nil, err
	}
	p.logger.Debug().
		Str("user_id", user.ID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted sessions with the same fingerprint")

	session, err := p.insertSession(ctx, tx, user.ID, params.Fingerprint)
	if err != nil {
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	p.logger.Info().
		Str("user_id", user.ID).
		Str("session_id", session.SessionID).
		Msg("signed in")
	return session, nil
}

func (p *postgresProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	now := time.Now()
	user := models.User{
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return "", err
	}
	user.ID = userUUID.String()

	passwordHash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return "", err
	}
	user.Password = passwordHash

	verifyToken, err := generateOpaqueToken()
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to generate verification token")
		return "", err
	}
	user.VerifyToken = verifyToken

	const insertUserQuery = `
INSERT INTO users (id,
                   email,
                   password,
                   email_verified,
                   verify_token,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, FALSE, $4, $5, $6)
`
	_, err = p.pgPool.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Email,
		user.Password,
		user.VerifyToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			p.logger.Warn().
				Str("email", user.Email).
				Msg("email already registered")
			return "", ErrEmailTaken
		}

		p.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return "", err
	}
	p.logger.Debug().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("inserted user")

	link := fmt.Sprintf("%s/auth/verify?token=%s", p.baseURL, user.VerifyToken)
	err = p.mailer.SendVerification(ctx, user.Email, link)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to send verification email")
		return "", err
	}

	p.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("signed up")
	return user.ID, nil
}

func (p *postgresProvider) Refresh(ctx context.Context, refreshToken, fingerprint string) (*Session, error) {
	session := models.Session{
		RefreshToken: refreshToken,
		Fingerprint:  fingerprint,
	}

	const selectSessionByRefreshTokenQuery = `
SELECT id,
       user_id,
       expires_at
FROM sessions
WHERE refresh_token = $1 AND
      fingerprint = $2
`
	err := p.pgPool.QueryRow(
		ctx,
		selectSessionByRefreshTokenQuery,
		session.RefreshToken,
		session.Fingerprint,
	).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn().Msg("session not found")
			return nil, ErrSessionNotFound
		}

		p.logger.Error().
			Err(err).
			Msg("failed to select session by refresh token")
		return nil, err
	}

	if session.ExpiresAt.Before(time.Now()) {
		p.logger.Warn().
			Str("session_id", session.ID).
			Time("expires_at", session.ExpiresAt).
			Msg("session expired")
		return nil, ErrSessionExpired
	}

	rotated, err := generateOpaqueToken()
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to generate refresh token")
		return nil, err
	}
	session.RefreshToken = rotated

	now := time.Now()
	session.ExpiresAt = now.Add(p.refreshTokenTTL)
	session.UpdatedAt = now

	const updateSessionQuery = `
UPDATE sessions
SET refresh_token = $1,
    expires_at = $2,
    updated_at = $3
WHERE id = $4
`
	_, err = p.pgPool.Exec(
		ctx,
		updateSessionQuery,
		session.RefreshToken,
		session.ExpiresAt,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to update session")
		return nil, err
	}
	p.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("rotated session")

	accessToken, accessTokenExpiresAt, err := p.generateAccessToken(session.ID)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	p.logger.Info().
		Str("user_id", session.UserID).
		Str("session_id", session.ID).
		Msg("refreshed session")
	return &Session{
		UserID:                session.UserID,
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

func (p *postgresProvider) SignOut(ctx context.Context, userID string) error {
	const deleteSessionsByUserIDQuery = `
DELETE FROM sessions
       WHERE user_id = $1
`
	tag, err := p.pgPool.Exec(
		ctx,
		deleteSessionsByUserIDQuery,
		userID,
	)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete sessions by user id")
		return err
	}
	p.logger.Debug().
		Str("user_id", userID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted sessions by user id")

	p.logger.Info().
		Str("user_id", userID).
		Msg("signed out")
	return nil
}

func (p *postgresProvider) Verify(ctx context.Context, token string) error {
	const verifyUserQuery = `
UPDATE users
SET email_verified = TRUE,
    verify_token = '',
    updated_at = $1
WHERE verify_token = $2 AND verify_token <> ''
`
	tag, err := p.pgPool.Exec(
		ctx,
		verifyUserQuery,
		time.Now(),
		token,
	)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to verify user")
		return err
	}
	if tag.RowsAffected() == 0 {
		p.logger.Warn().Msg("verification token not found")
		return ErrVerificationInvalid
	}

	p.logger.Info().Msg("verified email")
	return nil
}

func (p *postgresProvider) insertSession(ctx context.Context, tx pgx.Tx, userID, fingerprint string) (*Session, error) {
	now := time.Now()
	session := models.Session{
		UserID:      userID,
		Fingerprint: fingerprint,
		ExpiresAt:   now.Add(p.refreshTokenTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sessionUUID, err := uuid.NewV7()
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to generate session uuid")
		return nil, err
	}
	session.ID = sessionUUID.String()

	refreshToken, err := generateOpaqueToken()
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to generate refresh token")
		return nil, err
	}
	session.RefreshToken = refreshToken

	const insertSessionQuery = `
INSERT INTO sessions (id,
                      user_id,
                      fingerprint,
                      refresh_token,
                      expires_at,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = tx.Exec(
		ctx,
		insertSessionQuery,
		session.ID,
		session.UserID,
		session.Fingerprint,
		session.RefreshToken,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to insert session")
		return nil, err
	}
	p.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("inserted session")

	accessToken, accessTokenExpiresAt, err := p.generateAccessToken(session.ID)
	if err != nil {
		p.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	return &Session{
		UserID:                session.UserID,
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

func (p *postgresProvider) parseAccessToken(token string) (*jwt.RegisteredClaims, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return p.jwtSigningKey, nil
		},
		jwt.WithIssuer(p.jwtIssuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, errors.New("unexpected token claims")
	}
	return claims, nil
}

func (p *postgresProvider) generateAccessToken(sessionID string) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(p.accessTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    p.jwtIssuer,
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(p.jwtSigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// generateOpaqueToken returns 256 bits of entropy in URL-safe base64,
// used for both refresh and email verification tokens.
func generateOpaqueToken() (string, error) {
	const length = 32
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
