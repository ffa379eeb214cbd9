package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todoweb/internal/identity"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

const (
	userIDCtxKey    = "user_id"
	emailCtxKey     = "email"
	sessionIDCtxKey = "session_id"
)

// HandleSessionGate admits the request only with a live session.
// A missing cookie, a broken token, and a provider failure are all
// treated the same way: redirect to the login surface. An expired
// access token gets one transparent refresh attempt first.
func (h *handlerImpl) HandleSessionGate(c *gin.Context) {
	accessToken, err := c.Cookie(accessTokenCookie)
	if err != nil {
		redirectToLogin(c)
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		redirectToLogin(c)
		return
	}

	ident, err := h.provider.CurrentUser(c, accessToken, fingerprint)
	if err != nil {
		if identity.KindOf(err) != identity.KindSessionExpired {
			redirectToLogin(c)
			return
		}

		refreshToken, cookieErr := c.Cookie(refreshTokenCookie)
		if cookieErr != nil {
			redirectToLogin(c)
			return
		}

		session, refreshErr := h.provider.Refresh(c, refreshToken, fingerprint)
		if refreshErr != nil {
			h.logger.Debug().
				Err(refreshErr).
				Msg("failed to refresh session")
			redirectToLogin(c)
			return
		}
		setSessionCookies(c, session)

		ident, err = h.provider.CurrentUser(c, session.AccessToken, fingerprint)
		if err != nil {
			redirectToLogin(c)
			return
		}
	}

	c.Set(userIDCtxKey, ident.UserID)
	c.Set(emailCtxKey, ident.Email)
	c.Set(sessionIDCtxKey, ident.SessionID)
	c.Next()
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/login")
	c.Abort()
}

func currentIdentity(c *gin.Context) (identity.Identity, bool) {
	userID, ok1 := getStringFromContext(c, userIDCtxKey)
	email, ok2 := getStringFromContext(c, emailCtxKey)
	sessionID, ok3 := getStringFromContext(c, sessionIDCtxKey)
	return identity.Identity{
		UserID:    userID,
		Email:     email,
		SessionID: sessionID,
	}, ok1 && ok2 && ok3
}

func getStringFromContext(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

func generateFingerprint(c *gin.Context) (string, error) {
	fingerprintBytes, err := json.Marshal(map[string]string{
		"client_ip":  c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	return string(fingerprintBytes), nil
}

func setSessionCookies(c *gin.Context, session *identity.Session) {
	now := time.Now()
	setCookie(c, accessTokenCookie, session.AccessToken, session.AccessTokenExpiresAt.Sub(now))
	setCookie(c, refreshTokenCookie, session.RefreshToken, session.RefreshTokenExpiresAt.Sub(now))
}

func setCookie(c *gin.Context, name, value string, maxAge time.Duration) {
	const secure, httpOnly = false, true
	c.SetCookie(name, value, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}

func clearSessionCookies(c *gin.Context) {
	c.SetCookie(accessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", false, true)
}
