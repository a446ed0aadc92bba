package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nephsir/jobfinder/internal/job"
	"github.com/nephsir/jobfinder/internal/server"
	"github.com/nephsir/jobfinder/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedJobRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "slug", "title", "company", "location", "type", "category",
		"salary", "description", "requirements", "benefits", "posted_date",
		"deadline", "status", "applicants", "response_time",
		"interview_process", "logo", "employer_id", "created_at",
	}).AddRow(
		"job-1", "backend-engineer-acme", "Backend Engineer", "Acme Corp",
		"Remote", job.TypeRemote, "Technology", "$120k", "Build things.",
		"{SQL}", "{}", "2024-03-01", "", job.StatusActive, 3, "", "", "",
		"emp-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	)
}

func TestGetAllJobsEnvelope(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM job WHERE status = \$1`).
		WithArgs(job.StatusActive).
		WillReturnRows(storedJobRow())

	w := httptest.NewRecorder()
	GetAllJobsHandler(svr, job.NewRepository(db))(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		StatusCode int       `json:"statusCode"`
		Data       []job.Job `json:"data"`
		Count      *int      `json:"count"`
		Message    string    `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Jobs retrieved successfully", resp.Message)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 1, *resp.Count)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Backend Engineer", resp.Data[0].Title)
}

func TestGetJobByIDNotFound(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM job WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "missing"})
	GetJobByIDHandler(svr, job.NewRepository(db))(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Job not found")
}

func TestSearchJobsReadsQueryParams(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM job WHERE status = \$1 AND \(title ILIKE \$2`).
		WithArgs(job.StatusActive, "%go%").
		WillReturnRows(storedJobRow())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/jobs/search?keyword=go", nil)
	SearchJobsHandler(svr, job.NewRepository(db))(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Search completed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCategories(t *testing.T) {
	svr, _, db := newTestServer(t)
	defer db.Close()

	w := httptest.NewRecorder()
	GetCategoriesHandler(svr)(w, httptest.NewRequest(http.MethodGet, "/api/jobs/categories", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Technology")
	assert.Contains(t, w.Body.String(), "Categories retrieved successfully")
}

func TestGetJobTitlesUsesCache(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	// first call misses the cache and hits storage
	mock.ExpectQuery(`SELECT title, COUNT\(\*\) FROM job`).
		WithArgs(job.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"title", "count"}).AddRow("Software Engineer", 2))

	h := GetJobTitlesHandler(svr, job.NewRepository(db))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/api/jobs/titles", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// second call is served from the cache, no further queries expected
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/api/jobs/titles", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Software Engineer")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateJobValidation(t *testing.T) {
	svr, _, db := newTestServer(t)
	defer db.Close()
	employer := user.User{ID: "emp-1", Role: user.RoleEmployer}
	h := asUser(t, employer, CreateJobHandler(svr, job.NewRepository(db), &fakeEmitter{}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"title":"Backend Engineer"}`))
	h(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Title, company, location, type and description are required")

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(
		`{"title":"Backend Engineer","company":"Acme","location":"Remote","type":"Gig","description":"x"}`))
	h(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid job type")
}

func TestCreateJobBroadcastsAndInvalidatesCache(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()
	emitter := &fakeEmitter{}

	require.NoError(t, svr.CacheSet(server.CacheKeyProfileTitles, []byte(`[]`)))

	mock.ExpectExec(`INSERT INTO job`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	employer := user.User{ID: "emp-1", Role: user.RoleEmployer}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(
		`{"title":"Backend Engineer","company":"Acme","location":"Remote","type":"Remote","description":"Build."}`))
	asUser(t, employer, CreateJobHandler(svr, job.NewRepository(db), emitter))(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Job created successfully")
	assert.Equal(t, []string{"newJob"}, emitter.eventNames())
	_, cached := svr.CacheGet(server.CacheKeyProfileTitles)
	assert.False(t, cached, "job creation must invalidate the titles cache")

	var resp struct {
		Data job.Job `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.EmployerID)
	assert.Equal(t, "emp-1", *resp.Data.EmployerID)
	assert.Equal(t, job.StatusActive, resp.Data.Status)
	assert.Equal(t, 0, resp.Data.Applicants)
}

func TestUpdateJobMergesOverStored(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM job WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(storedJobRow())
	mock.ExpectExec(`UPDATE job SET title = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/api/jobs/job-1", strings.NewReader(`{"salary":"$140k"}`))
	r = mux.SetURLVars(r, map[string]string{"id": "job-1"})
	UpdateJobHandler(svr, job.NewRepository(db))(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data job.Job `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "$140k", resp.Data.Salary)
	assert.Equal(t, "Backend Engineer", resp.Data.Title, "absent fields keep their stored value")
	assert.Equal(t, 3, resp.Data.Applicants, "applicant counter is immutable through updates")
}

func TestDeleteJobNotFound(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM job WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/jobs/missing", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "missing"})
	DeleteJobHandler(svr, job.NewRepository(db))(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Job not found")
}
