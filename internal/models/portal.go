package models

import "time"

type AppealKind string

const (
	AppealCorruption AppealKind = "corruption"
	AppealSpelling   AppealKind = "spelling"
	AppealGeneral    AppealKind = "general"
)

var AppealKinds = []AppealKind{AppealCorruption, AppealSpelling, AppealGeneral}

func ParseAppealKind(s string) (AppealKind, bool) {
	for _, kind := range AppealKinds {
		if string(kind) == s {
			return kind, true
		}
	}
	return "", false
}

const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Page is the paginated list envelope returned by the backend.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type Department struct {
	Id           int    `json:"id,omitempty"`
	NameLatin    string `json:"name_uz"`
	NameCyrillic string `json:"name_cyrl"`
	NameRussian  string `json:"name_ru,omitempty"`
	ParentId     *int   `json:"parent,omitempty"`
	IsActive     bool   `json:"is_active"`
}

type Vacancy struct {
	Id         int        `json:"id"`
	Title      string     `json:"title"`
	Department int        `json:"department"`
	Positions  int        `json:"positions"`
	Status     string     `json:"status"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosesAt   *time.Time `json:"closes_at,omitempty"`
}

type Application struct {
	Id          int       `json:"id"`
	Vacancy     int       `json:"vacancy"`
	FullName    string    `json:"full_name"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Appeal struct {
	Id         int        `json:"id"`
	Kind       AppealKind `json:"kind"`
	Subject    string     `json:"subject"`
	Status     string     `json:"status"`
	Department *int       `json:"department,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

type AppealStatusUpdate struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

type Survey struct {
	Id        int    `json:"id"`
	Title     string `json:"title"`
	IsActive  bool   `json:"is_active"`
	Responses int    `json:"responses"`
}

type License struct {
	Id        int        `json:"id"`
	Number    string     `json:"number"`
	Holder    string     `json:"holder"`
	Status    string     `json:"status"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type TestResult struct {
	Id             int      `json:"id"`
	Applicant      string   `json:"applicant"`
	Test           string   `json:"test"`
	CorrectAnswers int      `json:"correct_answers"`
	TotalQuestions int      `json:"total_questions"`
	PassMark       *float64 `json:"pass_mark,omitempty"`
}

type LanguageInterview struct {
	Applicant     string `json:"applicant"`
	Language      string `json:"language"`
	Level         string `json:"level"`
	RequiredLevel string `json:"required_level"`
}

type Overview struct {
	Departments         int `json:"departments"`
	Vacancies           int `json:"vacancies"`
	OpenVacancies       int `json:"open_vacancies"`
	Applications        int `json:"applications"`
	PendingApplications int `json:"pending_applications"`
}

func (a *Appeal) ToTuple() []any {
	return []any{
		a.Id,
		string(a.Kind),
		a.Subject,
		a.Status,
		a.Department,
		a.CreatedAt,
		a.ResolvedAt,
	}
}

func (a *Appeal) IsOpen() bool {
	return a.Status != StatusResolved && a.Status != StatusRejected
}
