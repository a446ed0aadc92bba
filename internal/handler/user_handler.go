package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nephsir/jobfinder/internal/middleware"
	"github.com/nephsir/jobfinder/internal/server"
	"github.com/nephsir/jobfinder/internal/user"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

func GetAllUsersHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := userRepo.GetAllUsers()
		if err != nil {
			svr.Log(err, "unable to retrieve users")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving users")
			return
		}
		svr.RespondList(w, http.StatusOK, users, len(users), "Users retrieved successfully")
	}
}

func GetUserByIDHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userRepo.GetUser(mux.Vars(r)["id"])
		if err != nil {
			if err == user.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "User not found")
				return
			}
			svr.Log(err, "unable to retrieve user")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving user")
			return
		}
		svr.RespondData(w, http.StatusOK, u, "User found")
	}
}

func CreateUserHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			svr.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if req.Email == "" || req.Password == "" {
			svr.RespondError(w, http.StatusBadRequest, "Email and password are required")
			return
		}
		if req.FirstName == "" || req.LastName == "" {
			svr.RespondError(w, http.StatusBadRequest, "First name and last name are required")
			return
		}
		if req.Role == "" {
			req.Role = user.RoleJobseeker
		}
		if !user.ValidRole(req.Role) {
			svr.RespondError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			svr.Log(err, "unable to hash password")
			svr.RespondError(w, http.StatusInternalServerError, "Error creating user")
			return
		}
		u := user.User{
			Email:       req.Email,
			Password:    string(hashed),
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Phone:       req.Phone,
			Role:        req.Role,
			Avatar:      user.DefaultAvatarURL(req.FirstName, req.LastName),
			Location:    req.Location,
			Title:       req.Title,
			Skills:      stringList(req.Skills),
			CompanyName: req.CompanyName,
			Industry:    req.Industry,
			Bio:         req.Bio,
			LastLogin:   time.Now().UTC().Format("2006-01-02"),
		}
		if err := userRepo.CreateUser(&u); err != nil {
			if err == user.ErrEmailExists {
				svr.RespondError(w, http.StatusConflict, "Email already registered")
				return
			}
			svr.Log(err, "unable to create user")
			svr.RespondError(w, http.StatusInternalServerError, "Error creating user")
			return
		}
		svr.RespondData(w, http.StatusCreated, u, "User created successfully")
	}
}

// UpdateUserHandler merges the request body over the stored profile. Only
// the owner may update, and the password is not reachable from here.
func UpdateUserHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		id := mux.Vars(r)["id"]
		if requester.ID != id {
			svr.RespondError(w, http.StatusForbidden, "You can only update your own profile")
			return
		}
		u, err := userRepo.GetUser(id)
		if err != nil {
			if err == user.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "User not found")
				return
			}
			svr.Log(err, "unable to retrieve user for update")
			svr.RespondError(w, http.StatusInternalServerError, "Error updating user")
			return
		}
		orig := u
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			svr.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		u.ID = orig.ID
		u.CreatedAt = orig.CreatedAt
		u.SkippedJobIDs = orig.SkippedJobIDs
		if !user.ValidRole(u.Role) {
			svr.RespondError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		if err := userRepo.UpdateUser(&u); err != nil {
			switch err {
			case user.ErrNotFound:
				svr.RespondError(w, http.StatusNotFound, "User not found")
			case user.ErrEmailExists:
				svr.RespondError(w, http.StatusConflict, "Email already registered")
			default:
				svr.Log(err, "unable to update user")
				svr.RespondError(w, http.StatusInternalServerError, "Error updating user")
			}
			return
		}
		svr.RespondData(w, http.StatusOK, u, "User updated successfully")
	}
}

func DeleteUserHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := userRepo.DeleteUser(mux.Vars(r)["id"]); err != nil {
			if err == user.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "User not found")
				return
			}
			svr.Log(err, "unable to delete user")
			svr.RespondError(w, http.StatusInternalServerError, "Error deleting user")
			return
		}
		svr.RespondData(w, http.StatusOK, nil, "User deleted successfully")
	}
}

func GetMySkippedHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		skipped, err := userRepo.GetSkippedJobIDs(u.ID)
		if err != nil {
			svr.Log(err, "unable to retrieve skipped jobs")
			svr.RespondError(w, http.StatusInternalServerError, "Error retrieving skipped jobs")
			return
		}
		svr.RespondData(w, http.StatusOK, map[string][]string{"skippedJobIds": skipped}, "Skipped jobs retrieved")
	}
}

func AddSkippedHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		var req struct {
			JobID string `json:"jobId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
			svr.RespondError(w, http.StatusBadRequest, "jobId required")
			return
		}
		skipped, err := userRepo.AddSkippedJob(u.ID, req.JobID)
		if err != nil {
			if err == user.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "User not found")
				return
			}
			svr.Log(err, "unable to add skipped job")
			svr.RespondError(w, http.StatusInternalServerError, "Error adding skipped job")
			return
		}
		svr.RespondData(w, http.StatusOK, skipped, "Job skipped")
	}
}

func RemoveSkippedHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		skipped, err := userRepo.RemoveSkippedJob(u.ID, mux.Vars(r)["jobId"])
		if err != nil {
			if err == user.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "User not found")
				return
			}
			svr.Log(err, "unable to remove skipped job")
			svr.RespondError(w, http.StatusInternalServerError, "Error removing skipped job")
			return
		}
		svr.RespondData(w, http.StatusOK, skipped, "Skipped job removed")
	}
}

func ClearSkippedHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		skipped, err := userRepo.ClearSkippedJobs(u.ID)
		if err != nil {
			if err == user.ErrNotFound {
				svr.RespondError(w, http.StatusNotFound, "User not found")
				return
			}
			svr.Log(err, "unable to clear skipped jobs")
			svr.RespondError(w, http.StatusInternalServerError, "Error clearing skipped jobs")
			return
		}
		svr.RespondData(w, http.StatusOK, skipped, "Skipped jobs cleared")
	}
}
