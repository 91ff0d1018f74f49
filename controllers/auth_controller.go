// controllers/auth_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"

	"rentkit/app"
	"rentkit/db"
	"rentkit/models"
	"rentkit/pages"
	"rentkit/session"
)

func (s *Srv) regOptions() []webauthn.RegistrationOption {
	return []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationRequired,
		}),
	}
}

// ===== 注册（开放注册：邮箱 + 姓名） =====

type registerBeginReq struct {
	Email    string          `json:"email" binding:"required,email"`
	FullName string          `json:"full_name" binding:"required"`
	UserType models.UserType `json:"user_type"`
}

// signupUser returns the user to register a passkey for. An earlier sign-up
// that never finished its ceremony is reused.
func (s *Srv) signupUser(ctx context.Context, in registerBeginReq) (*models.User, error) {
	u, err := s.Repo.FindUserByEmail(ctx, in.Email)
	if err == nil {
		cs, err := s.Repo.LoadUserCredentials(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if len(cs) > 0 {
			return nil, db.ErrEmailTaken
		}
		return u, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	if in.UserType != "" && !in.UserType.Valid() {
		return nil, db.ErrInvalidUserType
	}
	u = &models.User{
		ID:       uuid.NewString(),
		Email:    in.Email,
		FullName: strings.TrimSpace(in.FullName),
		UserType: in.UserType,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Srv) BeginRegistration(c *gin.Context) {
	var in registerBeginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	u, err := s.signupUser(ctx, in)
	if err != nil {
		fail(c, err)
		return
	}
	wUser, err := s.waUserFor(ctx, u)
	if err != nil {
		fail(c, err)
		return
	}
	opts, sd, err := s.WA.BeginRegistration(wUser, s.regOptions()...)
	if err != nil {
		fail(c, err)
		return
	}

	sid := uuid.NewString()
	if err := s.Ceremonies.Save(ctx, session.Registration, sid, session.Ceremony{Data: *sd, UserID: u.ID}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts, "sessionId": sid})
}

func (s *Srv) FinishRegistration(c *gin.Context) {
	sid := c.Query("sessionId")
	if sid == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing sessionId"})
		return
	}
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	cer, err := s.Ceremonies.Take(ctx, session.Registration, sid)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}
	wUser, err := s.loadWAUserByID(ctx, cer.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	cred, err := s.WA.FinishRegistration(wUser, cer.Data, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Repo.AddCredential(ctx, fromWaCred(wUser.user.ID, cred)); err != nil {
		fail(c, err)
		return
	}

	// 注册即登录
	if err := s.issueSession(ctx, c.Writer, wUser.user.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "create app session failed"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "user": wUser.user, "redirect": s.Pages.URL(pages.Dashboard)})
}

// ===== 添加新凭据（已登录） =====

func (s *Srv) BeginAddCredential(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	wUser, err := s.waUserFor(ctx, me(c))
	if err != nil {
		fail(c, err)
		return
	}
	opts, sd, err := s.WA.BeginRegistration(wUser, s.regOptions()...)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.Ceremonies.Save(ctx, session.Registration, wUser.user.ID, session.Ceremony{Data: *sd, UserID: wUser.user.ID}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts})
}

func (s *Srv) FinishAddCredential(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	wUser, err := s.waUserFor(ctx, me(c))
	if err != nil {
		fail(c, err)
		return
	}
	cer, err := s.Ceremonies.Take(ctx, session.Registration, wUser.user.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}
	cred, err := s.WA.FinishRegistration(wUser, cer.Data, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Repo.AddCredential(ctx, fromWaCred(wUser.user.ID, cred)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ===== 登录 =====

type loginBeginReq struct {
	Email        string `json:"email"`
	Discoverable bool   `json:"discoverable"`
	Redirect     string `json:"redirect"`
}
type loginBeginResp struct {
	Options   *protocol.CredentialAssertion `json:"options"`
	SessionID string                        `json:"sessionId"`
}

// BeginLogin serves login() and loginWithRedirect(url). Without an email the
// ceremony is discoverable.
func (s *Srv) BeginLogin(c *gin.Context) {
	var req loginBeginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad request"})
		return
	}
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	var (
		opts *protocol.CredentialAssertion
		sd   *webauthn.SessionData
		err  error
		cer  session.Ceremony
	)
	if req.Discoverable || req.Email == "" {
		opts, sd, err = s.WA.BeginDiscoverableLogin(webauthn.WithUserVerification(protocol.VerificationRequired))
	} else {
		wUser, err2 := s.loadWAUserByEmail(ctx, req.Email)
		if err2 != nil {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		cer.UserID = wUser.user.ID
		opts, sd, err = s.WA.BeginLogin(wUser, webauthn.WithUserVerification(protocol.VerificationRequired))
	}
	if err != nil {
		fail(c, err)
		return
	}

	cer.Data = *sd
	cer.Redirect = app.SafeRedirect(req.Redirect, s.Cfg.WebOrigin, s.Pages.URL(pages.Dashboard))
	sid := uuid.NewString()
	if err := s.Ceremonies.Save(ctx, session.Login, sid, cer); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loginBeginResp{Options: opts, SessionID: sid})
}

func (s *Srv) FinishLogin(c *gin.Context) {
	sid := c.Query("sessionId")
	if sid == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing sessionId"})
		return
	}
	ip, ua := c.ClientIP(), c.Request.UserAgent()

	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()
	cer, err := s.Ceremonies.Take(ctx, session.Login, sid)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	var (
		userID string
		cred   *webauthn.Credential
	)
	if cer.UserID != "" {
		wUser, err := s.loadWAUserByID(ctx, cer.UserID)
		if err != nil {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		cred, err = s.WA.FinishLogin(wUser, cer.Data, c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
			return
		}
		userID = wUser.user.ID
	} else {
		handler := func(rawID, _ []byte) (webauthn.User, error) {
			u, _, err := s.Repo.FindUserByCredentialID(ctx, rawID)
			if err != nil {
				return nil, protocol.ErrBadRequest.WithDetails("credential not found")
			}
			w, err := s.loadWAUserByID(ctx, u.ID)
			if err != nil {
				return nil, err
			}
			return w, nil
		}
		user, c2, err := s.WA.FinishPasskeyLogin(handler, cer.Data, c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
			return
		}
		userID = user.(*waUser).user.ID
		cred = c2
	}
	if err := s.Repo.UpdateCredentialCounter(ctx, cred.ID, cred.Authenticator.SignCount, cred.Authenticator.CloneWarning); err != nil {
		s.Log.WithError(err).Warn("update credential counter")
	}

	if err := s.issueSession(ctx, c.Writer, userID, ip, ua); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "create app session failed"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "redirect": cer.Redirect})
}

// ===== 登出 =====

func (s *Srv) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = s.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	s.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// LogoutAll revokes every session of the signed-in user.
func (s *Srv) LogoutAll(c *gin.Context) {
	if err := s.AppSess.RevokeAllForUser(c.Request.Context(), me(c).ID); err != nil {
		fail(c, err)
		return
	}
	s.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
