package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rm-hull/hr-portal-admin/internal"
	"github.com/rm-hull/hr-portal-admin/internal/portal"
	"github.com/rm-hull/hr-portal-admin/internal/session"
)

// Register mounts the session and dashboard endpoints under r.
func Register(r gin.IRouter, svc *portal.Service, store session.Store, repo internal.AppealsRepository) {
	client := svc.Client()

	s := r.Group("/session")
	s.GET("", CurrentSession(store))
	s.POST("/login", Login(client))
	s.POST("/logout", Logout(svc))

	d := r.Group("/dashboard")
	d.GET("/overview", Overview(svc))
	d.GET("/departments", Departments(svc))
	d.POST("/departments", CreateDepartment(svc))
	d.PUT("/departments/:id", UpdateDepartment(svc))
	d.DELETE("/departments/:id", DeleteDepartment(svc))
	d.GET("/vacancies", Vacancies(svc))
	d.GET("/applications", Applications(svc))
	d.GET("/appeals/:kind", Appeals(svc))
	d.PATCH("/appeals/:kind/:id", UpdateAppealStatus(svc))
	d.GET("/surveys", Surveys(svc))
	d.GET("/licenses", Licenses(svc))
	d.GET("/test-results", TestResults(svc))
	d.POST("/interviews/evaluate", EvaluateInterview)
	d.GET("/statistics", Statistics(repo))
	d.POST("/transliterate", Transliterate)
}
