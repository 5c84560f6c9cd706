package routes

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/rm-hull/hr-portal-admin/internal/api"
	"github.com/rm-hull/hr-portal-admin/internal/models"
	"github.com/rm-hull/hr-portal-admin/internal/portal"
	"github.com/rm-hull/hr-portal-admin/internal/session"
)

var errNotLoggedIn = errors.Mark(errors.New("not logged in"), api.ErrAnonymousUnauthorized)

func Login(client *api.Client) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			badRequest(c, "username and password are required")
			return
		}

		user, err := client.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func Logout(svc *portal.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		if err := svc.Logout(); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func CurrentSession(store session.Store) func(c *gin.Context) {
	return func(c *gin.Context) {
		sess, err := store.Session()
		if err != nil {
			_ = c.Error(err)
			return
		}
		user, err := store.User()
		if err != nil {
			_ = c.Error(err)
			return
		}
		if sess == nil || user == nil {
			_ = c.Error(errNotLoggedIn)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":       user,
			"full_name":  user.FullName(),
			"expires_at": sess.ExpiresAt,
		})
	}
}
