package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nephsir/jobfinder/internal/job"
	"github.com/nephsir/jobfinder/internal/middleware"
	"github.com/nephsir/jobfinder/internal/realtime"
	"github.com/nephsir/jobfinder/internal/server"

	"github.com/gorilla/mux"
)

func GetAllJobsHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := jobRepo.GetActiveJobs()
		if err != nil {
			svr.Log(err, "unable to retrieve jobs")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving jobs")
			return
		}
		svr.RespondList(w, http.StatusOK, jobs, len(jobs), "Jobs retrieved successfully")
	}
}

func GetMyJobsHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		jobs, err := jobRepo.GetJobsByEmployer(u.ID)
		if err != nil {
			svr.Log(err, "unable to retrieve employer jobs")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving your jobs")
			return
		}
		svr.RespondList(w, http.StatusOK, jobs, len(jobs), "Your jobs retrieved successfully")
	}
}

func SearchJobsHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := job.SearchFilters{
			Keyword:  r.URL.Query().Get("keyword"),
			Location: r.URL.Query().Get("location"),
			Category: r.URL.Query().Get("category"),
			Type:     r.URL.Query().Get("type"),
		}
		jobs, err := jobRepo.SearchJobs(filters)
		if err != nil {
			svr.Log(err, "unable to search jobs")
			svr.RespondError(w, http.StatusInternalServerError, "Error searching jobs")
			return
		}
		svr.RespondList(w, http.StatusOK, jobs, len(jobs), "Search completed")
	}
}

func GetCategoriesHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.RespondData(w, http.StatusOK, job.Categories(), "Categories retrieved successfully")
	}
}

// GetJobTitlesHandler serves the merged title list from the cache when
// possible. The cache entry is dropped whenever a job is created.
func GetJobTitlesHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := svr.CacheGet(server.CacheKeyProfileTitles); ok {
			svr.RespondData(w, http.StatusOK, json.RawMessage(cached), "Job titles retrieved successfully")
			return
		}
		titles, err := jobRepo.GetJobTitlesForProfile()
		if err != nil {
			svr.Log(err, "unable to retrieve job titles")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving job titles")
			return
		}
		if encoded, err := json.Marshal(titles); err == nil {
			if err := svr.CacheSet(server.CacheKeyProfileTitles, encoded); err != nil {
				svr.Log(err, "unable to cache job titles")
			}
		}
		svr.RespondData(w, http.StatusOK, titles, "Job titles retrieved successfully")
	}
}

func GetJobByIDHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, err := jobRepo.GetJobByID(mux.Vars(r)["id"])
		if err != nil {
			if err == job.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "Job not found")
				return
			}
			svr.Log(err, "unable to retrieve job")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving job")
			return
		}
		svr.RespondData(w, http.StatusOK, j, "Job found")
	}
}

type jobRequest struct {
	Title            string          `json:"title"`
	Company          string          `json:"company"`
	Location         string          `json:"location"`
	Type             string          `json:"type"`
	Category         string          `json:"category"`
	Salary           string          `json:"salary"`
	Description      string          `json:"description"`
	Requirements     json.RawMessage `json:"requirements"`
	Benefits         json.RawMessage `json:"benefits"`
	PostedDate       string          `json:"postedDate"`
	Deadline         string          `json:"deadline"`
	ResponseTime     string          `json:"responseTime"`
	InterviewProcess string          `json:"interviewProcess"`
	Logo             string          `json:"logo"`
}

func CreateJobHandler(svr server.Server, jobRepo *job.Repository, notifier realtime.Emitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		var req jobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			svr.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if req.Title == "" || req.Company == "" || req.Location == "" || req.Type == "" || req.Description == "" {
			svr.RespondError(w, http.StatusBadRequest, "Title, company, location, type and description are required")
			return
		}
		if !job.ValidType(req.Type) {
			svr.RespondError(w, http.StatusBadRequest, "Invalid job type")
			return
		}
		employerID := u.ID
		j := job.Job{
			Title:            req.Title,
			Company:          req.Company,
			Location:         req.Location,
			Type:             req.Type,
			Category:         req.Category,
			Salary:           req.Salary,
			Description:      req.Description,
			Requirements:     stringList(req.Requirements),
			Benefits:         stringList(req.Benefits),
			PostedDate:       req.PostedDate,
			Deadline:         req.Deadline,
			ResponseTime:     req.ResponseTime,
			InterviewProcess: req.InterviewProcess,
			Logo:             req.Logo,
			EmployerID:       &employerID,
		}
		if err := jobRepo.CreateJob(&j); err != nil {
			svr.Log(err, "unable to create job")
			svr.RespondError(w, http.StatusInternalServerError, "Error creating job")
			return
		}
		if err := svr.CacheDelete(server.CacheKeyProfileTitles); err != nil {
			svr.Log(err, "unable to invalidate job titles cache")
		}
		notifier.Broadcast("newJob", map[string]interface{}{
			"job":       j,
			"message":   fmt.Sprintf("New job posted: %s", j.Title),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		svr.RespondData(w, http.StatusCreated, j, "Job created successfully")
	}
}

func UpdateJobHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, err := jobRepo.GetJobByID(mux.Vars(r)["id"])
		if err != nil {
			if err == job.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "Job not found")
				return
			}
			svr.Log(err, "unable to retrieve job for update")
			svr.RespondError(w, http.StatusInternalServerError, "Error updating job")
			return
		}
		// decode over the stored record so absent fields keep their value
		orig := j
		if err := json.NewDecoder(r.Body).Decode(&j); err != nil {
			svr.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		j.ID = orig.ID
		j.Slug = orig.Slug
		j.Applicants = orig.Applicants
		j.EmployerID = orig.EmployerID
		j.CreatedAt = orig.CreatedAt
		if !job.ValidType(j.Type) {
			svr.RespondError(w, http.StatusBadRequest, "Invalid job type")
			return
		}
		if j.Status != job.StatusActive && j.Status != job.StatusClosed && j.Status != job.StatusDraft {
			svr.RespondError(w, http.StatusBadRequest, "Invalid job status")
			return
		}
		if err := jobRepo.UpdateJob(&j); err != nil {
			if err == job.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "Job not found")
				return
			}
			svr.Log(err, "unable to update job")
			svr.RespondError(w, http.StatusInternalServerError, "Error updating job")
			return
		}
		if err := svr.CacheDelete(server.CacheKeyProfileTitles); err != nil {
			svr.Log(err, "unable to invalidate job titles cache")
		}
		svr.RespondData(w, http.StatusOK, j, "Job updated successfully")
	}
}

func DeleteJobHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := jobRepo.DeleteJob(mux.Vars(r)["id"]); err != nil {
			if err == job.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "Job not found")
				return
			}
			svr.Log(err, "unable to delete job")
			svr.RespondError(w, http.StatusInternalServerError, "Error deleting job")
			return
		}
		if err := svr.CacheDelete(server.CacheKeyProfileTitles); err != nil {
			svr.Log(err, "unable to invalidate job titles cache")
		}
		svr.RespondData(w, http.StatusOK, nil, "Job deleted successfully")
	}
}
