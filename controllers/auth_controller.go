package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/boardcore/config"
	"github.com/cppla/boardcore/middleware"
	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/utils"
)

// AuthController handles signup and the session lifecycle.
type AuthController struct {
	identity *services.IdentityService
	sessions *services.SessionService
	cfg      config.AppConfig
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(identity *services.IdentityService, sessions *services.SessionService, cfg config.AppConfig) *AuthController {
	return &AuthController{identity: identity, sessions: sessions, cfg: cfg}
}

// Signup registers a new account.
func (a *AuthController) Signup(ctx *gin.Context) {
	type request struct {
		Email         string `json:"email"`
		Password      string `json:"password"`
		Nickname      string `json:"nickname"`
		ProfileImage  string `json:"profileImage"`
		CaptchaID     string `json:"captchaId"`
		CaptchaAnswer string `json:"captchaAnswer"`
	}

	var req request
	if !bindJSON(ctx, &req) {
		return
	}

	if a.cfg.RegisterCaptchaEnabled && !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
		utils.Fail(ctx, models.ErrInvalidCaptcha)
		return
	}
	cooldown := time.Duration(a.cfg.RegisterAttemptCooldownSec) * time.Second
	if !utils.RegistrationCooldownTry(ctx.ClientIP(), cooldown) {
		utils.Fail(ctx, models.ErrTooManyAttempts)
		return
	}

	user, err := a.identity.Signup(ctx.Request.Context(), services.SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		Nickname:     req.Nickname,
		ProfileImage: req.ProfileImage,
	})
	utils.SignupsTotal.WithLabelValues(utils.ResultLabel(err)).Inc()
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.Sugar.Infow("user signed up", "user_id", user.ID)
	utils.Created(ctx, "SIGNUP_SUCCESS", "signup completed", presentUser(user))
}

// Login verifies credentials, sets the session cookie and returns the token
// for clients that prefer a bearer header.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if !bindJSON(ctx, &req) {
		return
	}

	ip := ctx.ClientIP()
	if utils.LoginIsBanned(ip) {
		utils.Fail(ctx, models.ErrTooManyAttempts)
		return
	}

	session, user, err := a.sessions.Login(ctx.Request.Context(), req.Email, req.Password)
	utils.LoginsTotal.WithLabelValues(utils.ResultLabel(err)).Inc()
	if err != nil {
		if errors.Is(err, models.ErrLoginFailed) {
			a.recordLoginFailure(ip)
		}
		utils.Fail(ctx, err)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(a.cfg.SessionCookieName, session.Token, int(time.Until(session.ExpiresAt).Seconds()), "/", "", a.cfg.SessionCookieSecure, true)
	utils.Success(ctx, "LOGIN_SUCCESS", "login succeeded", gin.H{
		"user":      presentUser(user),
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
	})
}

// Logout drops the current session. Calling it without a session still succeeds.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := middleware.SessionToken(ctx, a.cfg.SessionCookieName)
	if err := a.sessions.Logout(ctx.Request.Context(), token); err != nil {
		utils.Fail(ctx, err)
		return
	}
	clearSessionCookie(ctx, a.cfg)
	utils.Success(ctx, "LOGOUT_SUCCESS", "logged out", nil)
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	user, err := a.identity.FindByID(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "GET_MY_INFO_SUCCESS", "current user", presentUser(user))
}

// Captcha issues a signup captcha.
func (a *AuthController) Captcha(ctx *gin.Context) {
	id, image, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "SUCCESS", "captcha generated", gin.H{"captchaId": id, "image": image})
}

func (a *AuthController) recordLoginFailure(ip string) {
	limit := a.cfg.LoginFailedMaxPerIPPerHour
	n := utils.LoginFailRecord(ip, limit, time.Duration(a.cfg.LoginTempBanMinutes)*time.Minute)
	if limit > 0 && n == limit+1 {
		utils.Sugar.Warnw("login temporarily banned", "ip", ip, "failures", n)
	}
}

func clearSessionCookie(ctx *gin.Context, cfg config.AppConfig) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(cfg.SessionCookieName, "", -1, "/", "", cfg.SessionCookieSecure, true)
}
