package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"rentkit/app"
	"rentkit/config"
	"rentkit/db/dbtest"
	"rentkit/models"
	"rentkit/routes"
)

var today = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

type env struct {
	t   *testing.T
	app *app.App
	mr  *miniredis.Miniredis
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		WebOrigin:  "http://localhost:5173",
		RPID:       "localhost",
		RPOrigins:  []string{"http://localhost:5173"},
		SessionTTL: time.Minute,
		AppTTL:     time.Hour,
		AppName:    "RentKit",
		Upload: config.UploadConfig{
			Driver:    "local",
			Dir:       t.TempDir(),
			PublicURL: "/uploads",
			MaxBytes:  1 << 20,
		},
	}
	logger, _ := test.NewNullLogger()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	up, err := app.NewUploader(cfg.Upload, logger)
	require.NoError(t, err)
	a, err := app.New(cfg, logger, dbtest.New(t), rdb, up)
	require.NoError(t, err)

	s := routes.RegisterRoutes(a.Router, a)
	s.Now = func() time.Time { return today }
	return &env{t: t, app: a, mr: mr}
}

// signIn creates a user with a live session and returns the cookie value.
func (e *env) signIn(email string, typ models.UserType) (*models.User, string) {
	e.t.Helper()
	u := dbtest.User(e.t, e.app.Repo, email, typ)
	sid := uuid.NewString()
	require.NoError(e.t, e.app.Sessions.Create(e.t.Context(), sid, u.ID))
	return u, sid
}

func (e *env) do(method, path string, body any, cookie string) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: app.AppSessionCookie, Value: cookie})
	}
	w := httptest.NewRecorder()
	e.app.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error    string `json:"error"`
	Field    string `json:"field"`
	Redirect string `json:"redirect"`
}

// listing inserts equipment for ownerID with the given fields.
func (e *env) listing(ownerID, name, category string, price float64, available bool) *models.Equipment {
	e.t.Helper()
	eq := &models.Equipment{
		OwnerID:       ownerID,
		Name:          name,
		Description:   name + " for hire",
		Category:      category,
		Condition:     models.ConditionGood,
		PricePerDay:   price,
		MinRentalDays: 1,
		MaxRentalDays: 30,
		Location:      "Leeds",
		Postcode:      "LS1 4AP",
		Images:        []string{"https://cdn.example.com/a.jpg"},
		Availability:  available,
	}
	require.NoError(e.t, e.app.Repo.CreateEquipment(e.t.Context(), eq))
	return eq
}
