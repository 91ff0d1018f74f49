package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentkit/db"
	"rentkit/models"
	"rentkit/pages"
	"rentkit/session"
)

const AppSessionCookie = "app_session"

// 上下文 key
const (
	ctxUserID = "userID"
	ctxUser   = "user"
)

// CurrentUser returns the user loaded by AuthRequired or OptionalUser.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

func resolve(c *gin.Context, sess *session.AppSessionStore, repo *db.Repo) (*models.User, bool) {
	ck, err := c.Request.Cookie(AppSessionCookie)
	if err != nil || ck.Value == "" {
		return nil, false
	}
	as, err := sess.Get(c.Request.Context(), ck.Value)
	if err != nil {
		return nil, false
	}
	// 确认用户仍存在
	u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
	if err != nil {
		_ = sess.Delete(c.Request.Context(), ck.Value)
		return nil, false
	}
	c.Set(ctxUserID, u.ID)
	c.Set(ctxUser, u)
	return u, true
}

func AuthRequired(sess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := resolve(c, sess, repo); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// OptionalUser attaches the user when a valid session cookie is present.
func OptionalUser(sess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolve(c, sess, repo)
		c.Next()
	}
}

// OwnerOnly must run after AuthRequired. Renters are sent back to the dashboard.
func OwnerOnly(t pages.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !u.UserType.CanList() {
			c.AbortWithStatusJSON(http.StatusForbidden, H{
				"error":    "only owners can manage listings",
				"redirect": t.URL(pages.Dashboard),
			})
			return
		}
		c.Next()
	}
}
