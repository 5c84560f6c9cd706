package portal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-hull/hr-portal-admin/internal/api"
	"github.com/rm-hull/hr-portal-admin/internal/models"
)

type backend struct {
	server       *httptest.Server
	token        string
	hits         sync.Map
	refreshCalls atomic.Int32
	refreshFails atomic.Bool
	mu           sync.Mutex
	posted       []string
}

func newBackend(t *testing.T, token string, routes map[string]string) *backend {
	b := &backend{token: token}
	mux := http.NewServeMux()
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if b.refreshFails.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access":"` + b.token + `"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		key := r.Method + " " + r.URL.RequestURI()
		counter, _ := b.hits.LoadOrStore(key, new(atomic.Int32))
		counter.(*atomic.Int32).Add(1)

		if r.Method != http.MethodGet {
			body, _ := io.ReadAll(r.Body)
			b.mu.Lock()
			b.posted = append(b.posted, string(body))
			b.mu.Unlock()
		}

		response, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if response == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(response))
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) hitCount(key string) int {
	counter, ok := b.hits.Load(key)
	if !ok {
		return 0
	}
	return int(counter.(*atomic.Int32).Load())
}

func newTestService(t *testing.T, b *backend, access string) *Service {
	store := api.NewMemoryTokenStore()
	require.NoError(t, store.SetTokens(access, "r1"))
	return NewService(api.NewClient(b.server.URL, store), time.Minute)
}

func TestFetchAllFollowsPages(t *testing.T) {
	b := newBackend(t, "good", map[string]string{
		"GET /vacancies/":        `{"count":3,"next":"http://backend/vacancies/?page=2","previous":null,"results":[{"id":1,"status":"open"},{"id":2,"status":"closed"}]}`,
		"GET /vacancies/?page=2": `{"count":3,"next":null,"previous":"http://backend/vacancies/","results":[{"id":3,"status":"open"}]}`,
	})
	svc := newTestService(t, b, "good")

	vacancies, err := svc.Vacancies(context.Background())
	require.NoError(t, err)
	require.Len(t, vacancies, 3)
	assert.Equal(t, 1, vacancies[0].Id)
	assert.Equal(t, 3, vacancies[2].Id)
}

func TestFetchAllAcceptsBareArrays(t *testing.T) {
	b := newBackend(t, "good", map[string]string{
		"GET /surveys/": `[{"id":1,"title":"Xodimlar qoniqishi","is_active":true,"responses":42}]`,
	})
	svc := newTestService(t, b, "good")

	surveys, err := svc.Surveys(context.Background())
	require.NoError(t, err)
	require.Len(t, surveys, 1)
	assert.Equal(t, 42, surveys[0].Responses)
	assert.Equal(t, 1, b.hitCount("GET /surveys/"))
}

func TestDepartmentsAreMemoizedUntilWritten(t *testing.T) {
	b := newBackend(t, "good", map[string]string{
		"GET /departments/":     `[{"id":1,"name_uz":"Moliya","name_cyrl":"Молия","is_active":true}]`,
		"POST /departments/":    `{"id":2,"name_uz":"Kadrlar bo'limi","name_cyrl":"Кадрлар бўлими","is_active":true}`,
		"DELETE /departments/2/": "",
	})
	svc := newTestService(t, b, "good")
	ctx := context.Background()

	for range 3 {
		departments, err := svc.Departments(ctx)
		require.NoError(t, err)
		require.Len(t, departments, 1)
	}
	assert.Equal(t, 1, b.hitCount("GET /departments/"))

	created, err := svc.CreateDepartment(ctx, models.Department{NameLatin: "Kadrlar bo'limi", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, 2, created.Id)

	b.mu.Lock()
	posted := b.posted[0]
	b.mu.Unlock()
	assert.JSONEq(t, `{"name_uz":"Kadrlar bo'limi","name_cyrl":"Кадрлар бўлими","is_active":true}`, posted)

	_, err = svc.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.hitCount("GET /departments/"))

	require.NoError(t, svc.DeleteDepartment(ctx, 2))
	_, err = svc.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, b.hitCount("GET /departments/"))
}

func TestDepartmentsIgnoreCallerCancellation(t *testing.T) {
	b := newBackend(t, "good", map[string]string{
		"GET /departments/": `[{"id":1,"name_uz":"Moliya","name_cyrl":"Молия","is_active":true}]`,
	})
	svc := newTestService(t, b, "good")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	departments, err := svc.Departments(ctx)
	require.NoError(t, err)
	assert.Len(t, departments, 1)
	assert.Equal(t, 1, b.hitCount("GET /departments/"))
}

func TestDepartmentsCacheIsFlushedOnLogout(t *testing.T) {
	b := newBackend(t, "good", map[string]string{
		"GET /departments/": `[{"id":1}]`,
	})
	svc := newTestService(t, b, "good")
	ctx := context.Background()

	_, err := svc.Departments(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Logout())

	access, _ := svc.Client().Store().AccessToken()
	assert.Empty(t, access)

	require.NoError(t, svc.Client().Store().SetTokens("good", "r1"))
	_, err = svc.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.hitCount("GET /departments/"))
}

func TestDepartmentsCacheIsFlushedWhenSessionExpires(t *testing.T) {
	b := newBackend(t, "good", map[string]string{
		"GET /departments/": `[{"id":1}]`,
	})
	b.refreshFails.Store(true)
	svc := newTestService(t, b, "good")
	store := svc.Client().Store()
	ctx := context.Background()

	_, err := svc.Departments(ctx)
	require.NoError(t, err)

	require.NoError(t, store.SetTokens("revoked", "r1"))
	_, err = svc.Vacancies(ctx)
	require.Error(t, err)
	assert.True(t, api.IsSessionExpired(err))

	require.NoError(t, store.SetTokens("good", "r1"))
	_, err = svc.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.hitCount("GET /departments/"))
}

func TestOverviewRefreshesOnce(t *testing.T) {
	b := newBackend(t, "fresh1", map[string]string{
		"GET /departments/":  `[{"id":1},{"id":2}]`,
		"GET /vacancies/":    `[{"id":1,"status":"open"},{"id":2,"status":"closed"},{"id":3,"status":"open"}]`,
		"GET /applications/": `{"count":2,"next":null,"results":[{"id":1,"status":"new"},{"id":2,"status":"resolved"}]}`,
	})
	svc := newTestService(t, b, "expired")

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.Overview{
		Departments:         2,
		Vacancies:           3,
		OpenVacancies:       2,
		Applications:        2,
		PendingApplications: 1,
	}, overview)
	assert.Equal(t, int32(1), b.refreshCalls.Load())
}

func TestAppeals(t *testing.T) {
	b := newBackend(t, "good", map[string]string{
		"GET /appeals/corruption/":      `[{"id":1,"subject":"Pora","status":"new","created_at":"2026-01-10T09:00:00Z"}]`,
		"GET /appeals/spelling-errors/": `[{"id":1,"subject":"Imlo xatosi","status":"resolved","created_at":"2026-01-11T09:00:00Z","resolved_at":"2026-01-12T09:00:00Z"}]`,
		"GET /appeals/general/":         `[]`,
		"PATCH /appeals/general/9/":     `{"id":9,"subject":"Savol","status":"resolved","created_at":"2026-01-11T09:00:00Z"}`,
	})
	svc := newTestService(t, b, "good")
	ctx := context.Background()

	all, err := svc.AllAppeals(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.AppealCorruption, all[0].Kind)
	assert.Equal(t, models.AppealSpelling, all[1].Kind)
	require.NotNil(t, all[1].ResolvedAt)

	updated, err := svc.UpdateAppealStatus(ctx, models.AppealGeneral, 9, models.AppealStatusUpdate{Status: models.StatusResolved})
	require.NoError(t, err)
	assert.Equal(t, models.AppealGeneral, updated.Kind)
	assert.Equal(t, models.StatusResolved, updated.Status)

	_, err = svc.Appeals(ctx, "bogus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAppealKind))
}

func TestTestOutcomes(t *testing.T) {
	b := newBackend(t, "good", map[string]string{
		"GET /test-results/": `[{"id":1,"applicant":"A","correct_answers":18,"total_questions":20},{"id":2,"applicant":"B","correct_answers":11,"total_questions":20,"pass_mark":70}]`,
	})
	svc := newTestService(t, b, "good")

	outcomes, err := svc.TestOutcomes(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, 90.0, outcomes[0].Percentage)
	assert.True(t, outcomes[0].Passed)
	assert.Equal(t, 55.0, outcomes[1].Percentage)
	assert.False(t, outcomes[1].Passed)
}

func TestBackendErrorsPropagate(t *testing.T) {
	b := newBackend(t, "good", map[string]string{})
	svc := newTestService(t, b, "good")

	_, err := svc.Licenses(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
	assert.Equal(t, "Not found.", err.Error())
}
