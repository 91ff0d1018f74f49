package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"rentkit/app"
	"rentkit/models"
	"rentkit/session"
)

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestBeginRegistration(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/webauthn/register/begin", map[string]any{"email": "not-an-email", "full_name": "Ann"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := map[string]any{"email": "Ann@Example.com", "full_name": "Ann Lee", "user_type": "owner"}
	w = e.do(http.MethodPost, "/webauthn/register/begin", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[struct {
		SessionID string         `json:"sessionId"`
		Opts      map[string]any `json:"opts"`
	}](t, w)
	require.NotEmpty(t, resp.SessionID)
	require.Contains(t, resp.Opts, "publicKey")

	u, err := e.app.Repo.FindUserByEmail(t.Context(), "ann@example.com")
	require.NoError(t, err)
	require.Equal(t, models.UserOwner, u.UserType)

	cer, err := e.app.Ceremonies.Take(t.Context(), session.Registration, resp.SessionID)
	require.NoError(t, err)
	require.Equal(t, u.ID, cer.UserID)

	// an unfinished sign-up can be restarted
	w = e.do(http.MethodPost, "/webauthn/register/begin", body, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/webauthn/register/finish?sessionId=expired", map[string]any{}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBeginRegistrationRejectsRegisteredEmail(t *testing.T) {
	e := newEnv(t)
	u, _ := e.signIn("taken@example.com", models.UserRenter)
	require.NoError(t, e.app.Repo.AddCredential(t.Context(), &models.Credential{UserID: u.ID, CredentialID: []byte("cred-1")}))

	w := e.do(http.MethodPost, "/webauthn/register/begin", map[string]any{"email": "taken@example.com", "full_name": "T"}, "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestBeginLoginKeepsSafeRedirect(t *testing.T) {
	e := newEnv(t)
	cases := map[string]string{
		"":                                     "/dashboard",
		"/my-bookings":                         "/my-bookings",
		"http://localhost:5173/browse?q=drill": "http://localhost:5173/browse?q=drill",
		"https://phish.example.com/dashboard":  "/dashboard",
	}
	for in, want := range cases {
		w := e.do(http.MethodPost, "/webauthn/login/begin", map[string]any{"redirect": in}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		sid := decode[struct {
			SessionID string `json:"sessionId"`
		}](t, w).SessionID

		cer, err := e.app.Ceremonies.Take(t.Context(), session.Login, sid)
		require.NoError(t, err)
		require.Equal(t, want, cer.Redirect, in)
		require.Empty(t, cer.UserID)
	}

	w := e.do(http.MethodPost, "/webauthn/login/begin", map[string]any{"email": "ghost@example.com"}, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPost, "/webauthn/login/finish", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeAndLogout(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/users/me", nil, "").Code)

	u, sid := e.signIn("renter@example.com", models.UserRenter)
	w := e.do(http.MethodGet, "/api/users/me", nil, sid)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		User models.User `json:"user"`
	}](t, w)
	require.Equal(t, u.ID, got.User.ID)

	w = e.do(http.MethodPost, "/webauthn/logout", nil, sid)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Header().Get("Set-Cookie"), app.AppSessionCookie+"="))
	require.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/users/me", nil, sid).Code)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	e := newEnv(t)
	u, first := e.signIn("multi@example.com", models.UserRenter)
	second := "second-session"
	require.NoError(t, e.app.Sessions.Create(t.Context(), second, u.ID))

	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/webauthn/logout-all", nil, first).Code)
	require.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/users/me", nil, second).Code)
}

func TestUpdateMe(t *testing.T) {
	e := newEnv(t)
	_, sid := e.signIn("profile@example.com", models.UserRenter)

	w := e.do(http.MethodPut, "/api/users/me", map[string]any{"user_type": "both", "location": "York", "bio": "DIY fan"}, sid)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[struct {
		User models.User `json:"user"`
	}](t, w).User
	require.Equal(t, models.UserBoth, got.UserType)
	require.Equal(t, "York", got.Location)
	require.Equal(t, "profile@example.com", got.FullName)

	w = e.do(http.MethodPut, "/api/users/me", map[string]any{"user_type": "admin"}, sid)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsersReturnsContacts(t *testing.T) {
	e := newEnv(t)
	_, sid := e.signIn("cat@example.com", models.UserRenter)
	e.signIn("ann@example.com", models.UserOwner)
	e.signIn("bob@example.com", models.UserBoth)

	w := e.do(http.MethodGet, "/api/users?sort=full_name&limit=2", nil, sid)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[struct {
		Users []models.Contact `json:"users"`
	}](t, w).Users
	require.Len(t, users, 2)
	require.Equal(t, "ann@example.com", users[0].Email)
	require.Equal(t, "bob@example.com", users[1].Email)

	w = e.do(http.MethodGet, "/api/users?sort=password", nil, sid)
	require.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/users", nil, "").Code)
}
