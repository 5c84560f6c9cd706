package portal

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/kofalt/go-memoize"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rm-hull/hr-portal-admin/internal/api"
	"github.com/rm-hull/hr-portal-admin/internal/grading"
	"github.com/rm-hull/hr-portal-admin/internal/models"
	"github.com/rm-hull/hr-portal-admin/internal/translit"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	departmentsPath  = "/departments/"
	vacanciesPath    = "/vacancies/"
	applicationsPath = "/applications/"
	surveysPath      = "/surveys/"
	licensesPath     = "/licenses/"
	testResultsPath  = "/test-results/"

	departmentsKey = "departments"

	// departmentsTimeout bounds the shared departments fetch, which outlives
	// the request that started it.
	departmentsTimeout = 30 * time.Second

	// maxPages guards against a backend that never stops returning "next".
	maxPages = 500
)

var appealPaths = map[models.AppealKind]string{
	models.AppealCorruption: "/appeals/corruption/",
	models.AppealSpelling:   "/appeals/spelling-errors/",
	models.AppealGeneral:    "/appeals/general/",
}

var ErrUnknownAppealKind = errors.New("unknown appeal kind")

// Service exposes the portal backend to the dashboard as typed calls.
type Service struct {
	client *api.Client
	cache  *memoize.Memoizer
}

func NewService(client *api.Client, cacheTTL time.Duration) *Service {
	s := &Service{
		client: client,
		cache:  memoize.NewMemoizer(cacheTTL, 10*time.Minute),
	}
	client.OnSessionExpired(func(error) {
		s.FlushCache()
	})
	return s
}

func (s *Service) Client() *api.Client {
	return s.client
}

// FlushCache drops everything cached on behalf of the current session.
func (s *Service) FlushCache() {
	s.cache.Storage.Flush()
}

func (s *Service) Logout() error {
	s.FlushCache()
	return s.client.Logout()
}

// Departments is shared between concurrent callers, so the fetch is detached
// from the cancellation of whichever caller started it.
func (s *Service) Departments(ctx context.Context) ([]models.Department, error) {
	result, err, cached := s.cache.Memoize(departmentsKey, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), departmentsTimeout)
		defer cancel()

		departments, err := fetchAll[models.Department](fetchCtx, s.client, departmentsPath)
		if err != nil {
			return nil, err
		}
		return departments, nil
	})
	if err != nil {
		return nil, err
	}
	if cached {
		log.Debug().Msg("Serving departments from cache")
	}
	return result.([]models.Department), nil
}

func (s *Service) CreateDepartment(ctx context.Context, department models.Department) (*models.Department, error) {
	fillCyrillic(&department)
	created, err := api.Fetch[models.Department](ctx, s.client, departmentsPath, &api.RequestOptions{
		Method: http.MethodPost,
		Body:   department,
	})
	if err != nil {
		return nil, err
	}
	s.cache.Storage.Delete(departmentsKey)
	return &created, nil
}

func (s *Service) UpdateDepartment(ctx context.Context, id int, department models.Department) (*models.Department, error) {
	fillCyrillic(&department)
	department.Id = id
	updated, err := api.Fetch[models.Department](ctx, s.client, fmt.Sprintf("%s%d/", departmentsPath, id), &api.RequestOptions{
		Method: http.MethodPut,
		Body:   department,
	})
	if err != nil {
		return nil, err
	}
	s.cache.Storage.Delete(departmentsKey)
	return &updated, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, id int) error {
	_, err := s.client.Request(ctx, fmt.Sprintf("%s%d/", departmentsPath, id), &api.RequestOptions{
		Method: http.MethodDelete,
	})
	if err != nil {
		return err
	}
	s.cache.Storage.Delete(departmentsKey)
	return nil
}

func (s *Service) Vacancies(ctx context.Context) ([]models.Vacancy, error) {
	return fetchAll[models.Vacancy](ctx, s.client, vacanciesPath)
}

func (s *Service) Applications(ctx context.Context) ([]models.Application, error) {
	return fetchAll[models.Application](ctx, s.client, applicationsPath)
}

func (s *Service) Surveys(ctx context.Context) ([]models.Survey, error) {
	return fetchAll[models.Survey](ctx, s.client, surveysPath)
}

func (s *Service) Licenses(ctx context.Context) ([]models.License, error) {
	return fetchAll[models.License](ctx, s.client, licensesPath)
}

func (s *Service) TestOutcomes(ctx context.Context) ([]models.TestOutcome, error) {
	results, err := fetchAll[models.TestResult](ctx, s.client, testResultsPath)
	if err != nil {
		return nil, err
	}

	outcomes := make([]models.TestOutcome, 0, len(results))
	for _, result := range results {
		outcome := grading.Evaluate(result)
		outcomes = append(outcomes, models.TestOutcome{
			TestResult: result,
			Percentage: outcome.Percentage,
			Passed:     outcome.Passed,
		})
	}
	return outcomes, nil
}

func (s *Service) Appeals(ctx context.Context, kind models.AppealKind) ([]models.Appeal, error) {
	path, ok := appealPaths[kind]
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown appeal kind %q", kind), ErrUnknownAppealKind)
	}

	appeals, err := fetchAll[models.Appeal](ctx, s.client, path)
	if err != nil {
		return nil, err
	}
	for i := range appeals {
		if appeals[i].Kind == "" {
			appeals[i].Kind = kind
		}
	}
	return appeals, nil
}

// AllAppeals fetches every kind of appeal concurrently.
func (s *Service) AllAppeals(ctx context.Context) ([]models.Appeal, error) {
	results := make([][]models.Appeal, len(models.AppealKinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range models.AppealKinds {
		g.Go(func() error {
			appeals, err := s.Appeals(ctx, kind)
			if err != nil {
				return errors.Wrapf(err, "failed to fetch %s appeals", kind)
			}
			results[i] = appeals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.Appeal
	for _, appeals := range results {
		all = append(all, appeals...)
	}
	return all, nil
}

func (s *Service) UpdateAppealStatus(ctx context.Context, kind models.AppealKind, id int, update models.AppealStatusUpdate) (*models.Appeal, error) {
	path, ok := appealPaths[kind]
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown appeal kind %q", kind), ErrUnknownAppealKind)
	}

	appeal, err := api.Fetch[models.Appeal](ctx, s.client, fmt.Sprintf("%s%d/", path, id), &api.RequestOptions{
		Method: http.MethodPatch,
		Body:   update,
	})
	if err != nil {
		return nil, err
	}
	if appeal.Kind == "" {
		appeal.Kind = kind
	}
	return &appeal, nil
}

// Overview loads the headline counts for the dashboard landing page. The three
// lists are requested concurrently.
func (s *Service) Overview(ctx context.Context) (*models.Overview, error) {
	var (
		departments  []models.Department
		vacancies    []models.Vacancy
		applications []models.Application
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		departments, err = s.Departments(ctx)
		return err
	})
	g.Go(func() (err error) {
		vacancies, err = s.Vacancies(ctx)
		return err
	})
	g.Go(func() (err error) {
		applications, err = s.Applications(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := &models.Overview{
		Departments:  len(departments),
		Vacancies:    len(vacancies),
		Applications: len(applications),
	}
	for _, vacancy := range vacancies {
		if vacancy.Status == "open" {
			overview.OpenVacancies++
		}
	}
	for _, application := range applications {
		if application.Status == models.StatusNew || application.Status == models.StatusInProgress {
			overview.PendingApplications++
		}
	}
	return overview, nil
}

func fillCyrillic(department *models.Department) {
	if strings.TrimSpace(department.NameCyrillic) == "" {
		department.NameCyrillic = translit.ToCyrillic(department.NameLatin)
	}
}

// fetchAll walks every page of a list endpoint. The backend answers either
// with a bare array or with a paginated envelope.
func fetchAll[T any](ctx context.Context, client *api.Client, path string) ([]T, error) {
	items := make([]T, 0)

	for page := 1; page <= maxPages; page++ {
		endpoint := path
		if page > 1 {
			separator := "?"
			if strings.Contains(path, "?") {
				separator = "&"
			}
			endpoint = fmt.Sprintf("%s%spage=%d", path, separator, page)
		}

		body, err := client.Request(ctx, endpoint, nil)
		if err != nil {
			return nil, err
		}

		batch, hasNext, err := decodeList[T](body)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s", endpoint)
		}
		items = append(items, batch...)

		if !hasNext || len(batch) == 0 {
			return items, nil
		}
	}

	log.Warn().Str("path", path).Int("pages", maxPages).Msg("Stopped paging, too many pages")
	return items, nil
}

func decodeList[T any](body []byte) ([]T, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, false, err
		}
		return items, false, nil
	}

	var page models.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, false, err
	}
	return page.Results, page.Next != nil && *page.Next != "", nil
}
