package models

import "time"

type AppealStatistics struct {
	Total                   int                `json:"total"`
	Open                    int                `json:"open"`
	ByKind                  map[AppealKind]int `json:"by_kind"`
	ByStatus                map[string]int     `json:"by_status"`
	ByDepartment            map[string]int     `json:"by_department"`
	ByMonth                 map[string]int     `json:"by_month"`
	AverageResolutionDays   float64            `json:"average_resolution_days"`
	ResolutionDaysDeviation float64            `json:"resolution_days_deviation"`
}

type StatisticsResponse struct {
	Statistics *AppealStatistics `json:"statistics"`
	Since      *time.Time        `json:"since,omitempty"`
	LastSynced *time.Time        `json:"last_synced,omitempty"`
}

type TestOutcome struct {
	TestResult
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}
