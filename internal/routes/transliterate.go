package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rm-hull/hr-portal-admin/internal/translit"
)

type transliterateRequest struct {
	Text string `json:"text" binding:"required"`
}

func Transliterate(c *gin.Context) {
	var req transliterateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text is required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"latin":    req.Text,
		"cyrillic": translit.ToCyrillic(req.Text),
	})
}
