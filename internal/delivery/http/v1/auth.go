package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todoweb/internal/identity"
)

// notice is a user-facing message rendered above the auth forms.
type notice struct {
	Title   string
	Message string
	// MailApp renders the "Open email app" affordance next
	// to the message.
	MailApp bool
}

var (
	noticeEmailNotVerified = &notice{
		Title:   "Email Not Verified",
		Message: "Please check your email to verify your account.",
		MailApp: true,
	}
	noticeLoginFailed = &notice{
		Title:   "Login Error",
		Message: "Invalid email or password.",
	}
	noticeUnexpected = &notice{
		Title:   "Error",
		Message: "An unexpected error occurred. Please try again.",
	}
	noticeRegisterFailed = &notice{
		Title:   "Error",
		Message: "Registration failed. Please try again.",
	}
)

type credentialsRequest struct {
	Email    string `form:"email" binding:"required,email,max=255"`
	Password string `form:"password" binding:"required,min=6,max=255"`
}

func (h *handlerImpl) HandleLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (h *handlerImpl) HandleRegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind login form")
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Notice": noticeLoginFailed})
		return
	}
	h.logger.Info().
		Str("email", req.Email).
		Msg("login request")

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"Notice": noticeUnexpected})
		return
	}

	session, err := h.provider.SignIn(c, identity.SignInParams{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("email", req.Email).
			Msg("failed to sign in")
		switch identity.KindOf(err) {
		case identity.KindEmailNotVerified:
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Notice": noticeEmailNotVerified})
		case identity.KindInvalidCredentials:
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Notice": noticeLoginFailed})
		default:
			c.HTML(http.StatusInternalServerError, "login.html", gin.H{"Notice": noticeUnexpected})
		}
		return
	}

	setSessionCookies(c, session)

	h.logger.Info().
		Str("user_id", session.UserID).
		Msg("user logged in")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind register form")
		c.HTML(http.StatusBadRequest, "register.html", gin.H{"Notice": noticeRegisterFailed})
		return
	}
	h.logger.Info().
		Str("email", req.Email).
		Msg("register request")

	userID, err := h.provider.SignUp(c, req.Email, req.Password)
	if err != nil {
		// No per-cause messaging in this flow; the cause goes
		// to the log only.
		h.logger.Error().
			Err(err).
			Str("email", req.Email).
			Msg("failed to sign up")
		c.HTML(http.StatusOK, "register.html", gin.H{"Notice": noticeRegisterFailed})
		return
	}

	h.logger.Info().
		Str("user_id", userID).
		Str("email", req.Email).
		Msg("registered user")
	c.HTML(http.StatusOK, "register.html", gin.H{
		"Registered": true,
		"Email":      req.Email,
	})
}

func (h *handlerImpl) HandleVerify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	err := h.provider.Verify(c, token)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to verify email")
	}

	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	ident, ok := currentIdentity(c)
	if ok {
		err := h.provider.SignOut(c, ident.UserID)
		if err != nil {
			// Logout proceeds regardless; cookies are cleared
			// either way.
			h.logger.Error().
				Err(err).
				Str("user_id", ident.UserID).
				Msg("failed to sign out")
		}
		h.pages.Drop(ident.SessionID)
	}

	clearSessionCookies(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
