package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nephsir/jobfinder/internal/application"
	"github.com/nephsir/jobfinder/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedApplicationRow(a application.Application) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "job_id", "user_id", "job_title", "company", "applicant_name",
		"email", "phone", "location", "cover_letter", "resume_url", "status",
		"applied_date", "last_updated", "created_at",
	}).AddRow(
		a.ID, a.JobID, a.UserID, a.JobTitle, a.Company, a.ApplicantName,
		a.Email, a.Phone, a.Location, a.CoverLetter, a.ResumeURL, a.Status,
		a.AppliedDate, a.LastUpdated, a.CreatedAt,
	)
}

func TestCreateApplicationBroadcastsOnFirstSubmission(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()
	emitter := &fakeEmitter{}

	jobID := ksuid.New().String()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO application`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE job SET applicants = applicants \+ 1`).
		WithArgs(jobID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := fmt.Sprintf(`{"jobId":%q,"userId":"u-1","jobTitle":"Backend Engineer","applicantName":"Alice Doe"}`, jobID)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(body))
	CreateApplicationHandler(svr, application.NewRepository(db), emitter)(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Application submitted successfully")
	require.Equal(t, []string{"newApplication"}, emitter.eventNames())
}

func TestCreateApplicationDuplicateIsSilent(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()
	emitter := &fakeEmitter{}

	jobID := ksuid.New().String()
	existing := application.Application{
		ID:        "app-1",
		JobID:     jobID,
		UserID:    "u-1",
		JobTitle:  "Backend Engineer",
		Status:    application.StatusSubmitted,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO application`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	mock.ExpectQuery(`SELECT (.+) FROM application WHERE user_id = \$1 AND job_id = \$2`).
		WithArgs("u-1", jobID).
		WillReturnRows(storedApplicationRow(existing))

	body := fmt.Sprintf(`{"jobId":%q,"userId":"u-1"}`, jobID)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(body))
	CreateApplicationHandler(svr, application.NewRepository(db), emitter)(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"app-1"`)
	assert.Empty(t, emitter.eventNames(), "duplicate submissions must not notify")
}

func TestCreateApplicationMissingIdentifiers(t *testing.T) {
	svr, _, db := newTestServer(t)
	defer db.Close()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(`{"jobTitle":"x"}`))
	CreateApplicationHandler(svr, application.NewRepository(db), &fakeEmitter{})(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "jobId and userId are required")
}

func TestCreateApplicationMalformedJobID(t *testing.T) {
	svr, _, db := newTestServer(t)
	defer db.Close()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(`{"jobId":"garbage","userId":"u-1"}`))
	CreateApplicationHandler(svr, application.NewRepository(db), &fakeEmitter{})(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid job id")
}

func TestUpdateApplicationStatusRejectsUnknownStatus(t *testing.T) {
	svr, _, db := newTestServer(t)
	defer db.Close()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/api/applications/app-1/status", strings.NewReader(`{"status":"promoted"}`))
	r = mux.SetURLVars(r, map[string]string{"id": "app-1"})
	UpdateApplicationStatusHandler(svr, application.NewRepository(db), &fakeEmitter{})(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid application status")
}

func TestUpdateApplicationStatusNotifiesApplicant(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()
	emitter := &fakeEmitter{}

	updated := application.Application{
		ID:        "app-1",
		JobID:     "job-1",
		UserID:    "u-1",
		JobTitle:  "Backend Engineer",
		Status:    application.StatusUnderReview,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(`UPDATE application SET status = \$2`).
		WithArgs("app-1", application.StatusUnderReview, sqlmock.AnyArg()).
		WillReturnRows(storedApplicationRow(updated))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/api/applications/app-1/status", strings.NewReader(`{"status":"under_review"}`))
	r = mux.SetURLVars(r, map[string]string{"id": "app-1"})
	UpdateApplicationStatusHandler(svr, application.NewRepository(db), emitter)(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, "applicationStatusUpdate", emitter.events[0].Event)
	assert.Equal(t, "u-1", emitter.events[0].UserID)
}

func TestUpdateApplicationStatusInterviewEmitsBothEvents(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()
	emitter := &fakeEmitter{}

	updated := application.Application{
		ID:        "app-1",
		JobID:     "job-1",
		UserID:    "u-1",
		JobTitle:  "Backend Engineer",
		Status:    application.StatusInterviewScheduled,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(`UPDATE application SET status = \$2`).
		WillReturnRows(storedApplicationRow(updated))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/api/applications/app-1/status", strings.NewReader(`{"status":"interview_scheduled"}`))
	r = mux.SetURLVars(r, map[string]string{"id": "app-1"})
	UpdateApplicationStatusHandler(svr, application.NewRepository(db), emitter)(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"applicationStatusUpdate", "interviewScheduled"}, emitter.eventNames())
}

func TestDeleteApplicationRequiresOwnership(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	stored := application.Application{
		ID:        "app-1",
		JobID:     "job-1",
		UserID:    "someone-else",
		Status:    application.StatusSubmitted,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(`SELECT (.+) FROM application WHERE id = \$1`).
		WithArgs("app-1").
		WillReturnRows(storedApplicationRow(stored))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/applications/app-1", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "app-1"})
	asUser(t, user.User{ID: "u-1"}, DeleteApplicationHandler(svr, application.NewRepository(db)))(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "You can only delete your own application")
}

func TestDeleteApplicationOwnerSucceeds(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	stored := application.Application{
		ID:        "app-1",
		JobID:     "job-1",
		UserID:    "u-1",
		Status:    application.StatusSubmitted,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(`SELECT (.+) FROM application WHERE id = \$1`).
		WithArgs("app-1").
		WillReturnRows(storedApplicationRow(stored))
	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM application WHERE id = \$1 RETURNING job_id`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow("job-1"))
	mock.ExpectExec(`UPDATE job SET applicants = GREATEST`).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/applications/app-1", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "app-1"})
	asUser(t, user.User{ID: "u-1"}, DeleteApplicationHandler(svr, application.NewRepository(db)))(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Application deleted successfully")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMyApplicationByJobNotFound(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM application WHERE user_id = \$1 AND job_id = \$2 RETURNING job_id`).
		WithArgs("u-1", "job-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/applications/me/by-job/job-1", nil)
	r = mux.SetURLVars(r, map[string]string{"jobId": "job-1"})
	asUser(t, user.User{ID: "u-1"}, DeleteMyApplicationByJobHandler(svr, application.NewRepository(db)))(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Application not found for this job")
}

func TestGetAllApplicationsEnvelopeHasCount(t *testing.T) {
	svr, mock, db := newTestServer(t)
	defer db.Close()

	stored := application.Application{
		ID:        "app-1",
		JobID:     "job-1",
		UserID:    "u-1",
		Status:    application.StatusSubmitted,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(`SELECT (.+) FROM application ORDER BY created_at DESC`).
		WillReturnRows(storedApplicationRow(stored))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	GetAllApplicationsHandler(svr, application.NewRepository(db))(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), "Applications retrieved successfully")
}
