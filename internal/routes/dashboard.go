package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rm-hull/hr-portal-admin/internal/grading"
	"github.com/rm-hull/hr-portal-admin/internal/models"
	"github.com/rm-hull/hr-portal-admin/internal/portal"
)

// list adapts a service listing method into a handler answering {"results": [...]}.
func list[T any](fetch func(c *gin.Context) ([]T, error)) func(c *gin.Context) {
	return func(c *gin.Context) {
		results, err := fetch(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
	}
}

func Overview(svc *portal.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		overview, err := svc.Overview(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

func Departments(svc *portal.Service) func(c *gin.Context) {
	return list(func(c *gin.Context) ([]models.Department, error) {
		return svc.Departments(c.Request.Context())
	})
}

func CreateDepartment(svc *portal.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		department, ok := bindDepartment(c)
		if !ok {
			return
		}

		created, err := svc.CreateDepartment(c.Request.Context(), department)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func UpdateDepartment(svc *portal.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		department, ok := bindDepartment(c)
		if !ok {
			return
		}

		updated, err := svc.UpdateDepartment(c.Request.Context(), id, department)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteDepartment(svc *portal.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		if err := svc.DeleteDepartment(c.Request.Context(), id); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func Vacancies(svc *portal.Service) func(c *gin.Context) {
	return list(func(c *gin.Context) ([]models.Vacancy, error) {
		return svc.Vacancies(c.Request.Context())
	})
}

func Applications(svc *portal.Service) func(c *gin.Context) {
	return list(func(c *gin.Context) ([]models.Application, error) {
		return svc.Applications(c.Request.Context())
	})
}

func Appeals(svc *portal.Service) func(c *gin.Context) {
	return list(func(c *gin.Context) ([]models.Appeal, error) {
		return svc.Appeals(c.Request.Context(), models.AppealKind(c.Param("kind")))
	})
}

func UpdateAppealStatus(svc *portal.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		var update models.AppealStatusUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		switch update.Status {
		case models.StatusNew, models.StatusInProgress, models.StatusResolved, models.StatusRejected:
		default:
			badRequest(c, "invalid status: "+strconv.Quote(update.Status))
			return
		}

		appeal, err := svc.UpdateAppealStatus(c.Request.Context(), models.AppealKind(c.Param("kind")), id, update)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, appeal)
	}
}

func Surveys(svc *portal.Service) func(c *gin.Context) {
	return list(func(c *gin.Context) ([]models.Survey, error) {
		return svc.Surveys(c.Request.Context())
	})
}

func Licenses(svc *portal.Service) func(c *gin.Context) {
	return list(func(c *gin.Context) ([]models.License, error) {
		return svc.Licenses(c.Request.Context())
	})
}

func TestResults(svc *portal.Service) func(c *gin.Context) {
	return list(func(c *gin.Context) ([]models.TestOutcome, error) {
		return svc.TestOutcomes(c.Request.Context())
	})
}

func EvaluateInterview(c *gin.Context) {
	var interview models.LanguageInterview
	if err := c.ShouldBindJSON(&interview); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	outcome, err := grading.EvaluateInterview(interview)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func bindDepartment(c *gin.Context) (models.Department, bool) {
	var department models.Department
	if err := c.ShouldBindJSON(&department); err != nil {
		badRequest(c, "invalid request body")
		return department, false
	}
	if department.NameLatin == "" {
		badRequest(c, "name_uz is required")
		return department, false
	}
	return department, true
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid id parameter")
		return 0, false
	}
	return id, true
}
