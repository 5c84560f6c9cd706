package stats

import (
	"math"
	"strconv"

	"github.com/rm-hull/hr-portal-admin/internal/models"
)

const unassigned = "unassigned"

func Derive(appeals []models.Appeal) *models.AppealStatistics {
	stats := &models.AppealStatistics{
		ByKind:       make(map[models.AppealKind]int),
		ByStatus:     make(map[string]int),
		ByDepartment: make(map[string]int),
		ByMonth:      make(map[string]int),
	}

	resolutionDays := make([]float64, 0, len(appeals))

	for _, appeal := range appeals {
		stats.Total++
		if appeal.IsOpen() {
			stats.Open++
		}
		stats.ByKind[appeal.Kind]++
		stats.ByStatus[appeal.Status]++
		stats.ByMonth[appeal.CreatedAt.UTC().Format("2006-01")]++

		department := unassigned
		if appeal.Department != nil {
			department = strconv.Itoa(*appeal.Department)
		}
		stats.ByDepartment[department]++

		if appeal.ResolvedAt != nil && !appeal.ResolvedAt.Before(appeal.CreatedAt) {
			resolutionDays = append(resolutionDays, appeal.ResolvedAt.Sub(appeal.CreatedAt).Hours()/24)
		}
	}

	if len(resolutionDays) == 0 {
		return stats
	}

	sum := 0.0
	for _, d := range resolutionDays {
		sum += d
	}
	avg := sum / float64(len(resolutionDays))
	stats.AverageResolutionDays = math.Round(avg*10) / 10

	// Standard deviation
	if len(resolutionDays) > 1 {
		variance := 0.0
		for _, d := range resolutionDays {
			variance += math.Pow(d-avg, 2)
		}
		variance /= float64(len(resolutionDays))
		stats.ResolutionDaysDeviation = math.Round(math.Sqrt(variance)*10) / 10
	}

	return stats
}
