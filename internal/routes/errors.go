package routes

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rm-hull/hr-portal-admin/internal/api"
	"github.com/rm-hull/hr-portal-admin/internal/grading"
	"github.com/rm-hull/hr-portal-admin/internal/portal"
)

// HandleErrors turns the last error recorded by a handler into a JSON response.
// Session failures send the browser back to loginUrl.
func HandleErrors(loginUrl string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var stErr *api.HTTPStatusError
		switch {
		case api.IsSessionExpired(err), errors.Is(err, api.ErrAnonymousUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":    "Session expired, please log in again",
				"redirect": loginUrl,
			})

		case errors.Is(err, portal.ErrUnknownAppealKind):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

		case errors.Is(err, grading.ErrUnknownLevel):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		case errors.As(err, &stErr):
			c.JSON(stErr.StatusCode, gin.H{"error": stErr.Error()})

		default:
			log.Err(err).Str("path", c.Request.URL.Path).Msg("backend request failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "The HR portal backend could not be reached"})
		}
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
