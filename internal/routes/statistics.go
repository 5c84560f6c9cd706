package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rm-hull/hr-portal-admin/internal"
	"github.com/rm-hull/hr-portal-admin/internal/models"
	"github.com/rm-hull/hr-portal-admin/internal/stats"
)

const dateLayout = "2006-01-02"

func Statistics(repo internal.AppealsRepository) func(c *gin.Context) {
	return func(c *gin.Context) {
		var since *time.Time
		if sinceStr := c.Query("since"); sinceStr != "" {
			t, err := time.Parse(dateLayout, sinceStr)
			if err != nil {
				badRequest(c, "since must be a date in YYYY-MM-DD format")
				return
			}
			since = &t
		}

		var from time.Time
		if since != nil {
			from = *since
		}
		appeals, err := repo.ListAppeals(from)
		if err != nil {
			log.Err(err).Msg("error while reading appeals snapshot")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		lastSynced, err := repo.LastSynced()
		if err != nil {
			log.Err(err).Msg("error while reading last sync time")
		}

		c.JSON(http.StatusOK, models.StatisticsResponse{
			Statistics: stats.Derive(appeals),
			Since:      since,
			LastSynced: lastSynced,
		})
	}
}
