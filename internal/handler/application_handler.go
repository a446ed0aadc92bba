package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nephsir/jobfinder/internal/application"
	"github.com/nephsir/jobfinder/internal/middleware"
	"github.com/nephsir/jobfinder/internal/realtime"
	"github.com/nephsir/jobfinder/internal/server"

	"github.com/gorilla/mux"
)

func GetAllApplicationsHandler(svr server.Server, applicationRepo *application.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applications, err := applicationRepo.GetAllApplications()
		if err != nil {
			svr.Log(err, "unable to retrieve applications")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving applications")
			return
		}
		svr.RespondList(w, http.StatusOK, applications, len(applications), "Applications retrieved successfully")
	}
}

func GetMyApplicationsHandler(svr server.Server, applicationRepo *application.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		applications, err := applicationRepo.GetApplicationsByUser(u.ID)
		if err != nil {
			svr.Log(err, "unable to retrieve own applications")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving applications")
			return
		}
		svr.RespondList(w, http.StatusOK, applications, len(applications), "My applications retrieved")
	}
}

func GetApplicationsByUserHandler(svr server.Server, applicationRepo *application.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applications, err := applicationRepo.GetApplicationsByUser(mux.Vars(r)["userId"])
		if err != nil {
			svr.Log(err, "unable to retrieve user applications")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving user applications")
			return
		}
		svr.RespondList(w, http.StatusOK, applications, len(applications), "User applications retrieved successfully")
	}
}

func GetApplicationByIDHandler(svr server.Server, applicationRepo *application.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := applicationRepo.GetApplicationByID(mux.Vars(r)["id"])
		if err != nil {
			if err == application.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "Application not found")
				return
			}
			svr.Log(err, "unable to retrieve application")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving application")
			return
		}
		svr.RespondData(w, http.StatusOK, a, "Application found")
	}
}

type applicationRequest struct {
	JobID         string `json:"jobId"`
	UserID        string `json:"userId"`
	JobTitle      string `json:"jobTitle"`
	Company       string `json:"company"`
	ApplicantName string `json:"applicantName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Location      string `json:"location"`
	CoverLetter   string `json:"coverLetter"`
	ResumeURL     string `json:"resumeUrl"`
}

func (req applicationRequest) toApplication() application.Application {
	return application.Application{
		JobID:         req.JobID,
		UserID:        req.UserID,
		JobTitle:      req.JobTitle,
		Company:       req.Company,
		ApplicantName: req.ApplicantName,
		Email:         req.Email,
		Phone:         req.Phone,
		Location:      req.Location,
		CoverLetter:   req.CoverLetter,
		ResumeURL:     req.ResumeURL,
	}
}

// CreateApplicationHandler submits an application. Submitting the same
// (user, job) pair again answers 201 with the already-stored record and
// triggers no notification and no counter increment.
func CreateApplicationHandler(svr server.Server, applicationRepo *application.Repository, notifier realtime.Emitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req applicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			svr.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if req.JobID == "" || req.UserID == "" {
			svr.RespondError(w, http.StatusBadRequest, "jobId and userId are required")
			return
		}
		a := req.toApplication()
		created, err := applicationRepo.CreateApplication(&a)
		if err != nil {
			if err == application.ErrInvalidJob {
				svr.RespondError(w, http.StatusBadRequest, "Invalid job id")
				return
			}
			svr.Log(err, "unable to create application")
			svr.RespondError(w, http.StatusInternalServerError, "Error submitting application")
			return
		}
		if created {
			notifier.Broadcast("newApplication", newApplicationEvent(a))
		}
		svr.RespondData(w, http.StatusCreated, a, "Application submitted successfully")
	}
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func UpdateApplicationStatusHandler(svr server.Server, applicationRepo *application.Repository, notifier realtime.Emitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			svr.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if !application.ValidStatus(req.Status) {
			svr.RespondError(w, http.StatusBadRequest, "Invalid application status")
			return
		}
		a, err := applicationRepo.UpdateApplicationStatus(mux.Vars(r)["id"], req.Status)
		if err != nil {
			if err == application.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "Application not found")
				return
			}
			svr.Log(err, "unable to update application status")
			svr.RespondError(w, http.StatusInternalServerError, "Error updating application status")
			return
		}
		event := map[string]interface{}{
			"applicationId": a.ID,
			"status":        a.Status,
			"jobTitle":      a.JobTitle,
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
		}
		notifier.ToUser(a.UserID, "applicationStatusUpdate", event)
		if a.Status == application.StatusInterviewScheduled {
			notifier.ToUser(a.UserID, "interviewScheduled", event)
		}
		svr.RespondData(w, http.StatusOK, a, "Application status updated")
	}
}

func DeleteApplicationHandler(svr server.Server, applicationRepo *application.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		a, err := applicationRepo.GetApplicationByID(mux.Vars(r)["id"])
		if err != nil {
			if err == application.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "Application not found")
				return
			}
			svr.Log(err, "unable to retrieve application for delete")
			svr.RespondError(w, http.StatusInternalServerError, "Error deleting application")
			return
		}
		if a.UserID != u.ID {
			svr.RespondError(w, http.StatusForbidden, "You can only delete your own application")
			return
		}
		if err := applicationRepo.DeleteApplication(a.ID); err != nil {
			if err == application.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "Application not found")
				return
			}
			svr.Log(err, "unable to delete application")
			svr.RespondError(w, http.StatusInternalServerError, "Error deleting application")
			return
		}
		svr.RespondData(w, http.StatusOK, nil, "Application deleted successfully")
	}
}

func DeleteMyApplicationByJobHandler(svr server.Server, applicationRepo *application.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if err := applicationRepo.DeleteApplicationByUserAndJob(u.ID, mux.Vars(r)["jobId"]); err != nil {
			if err == application.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "Application not found for this job")
				return
			}
			svr.Log(err, "unable to withdraw application")
			svr.RespondError(w, http.StatusInternalServerError, "Error removing application")
			return
		}
		svr.RespondData(w, http.StatusOK, nil, "Application removed successfully")
	}
}

// newApplicationEvent is the coarse broadcast payload: enough for a feed
// entry, not the full record.
func newApplicationEvent(a application.Application) map[string]interface{} {
	return map[string]interface{}{
		"jobId":         a.JobID,
		"jobTitle":      a.JobTitle,
		"applicantName": a.ApplicantName,
		"message":       fmt.Sprintf("New application submitted for %s", a.JobTitle),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}
}
