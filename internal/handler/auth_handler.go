package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nephsir/jobfinder/internal/middleware"
	"github.com/nephsir/jobfinder/internal/server"
	"github.com/nephsir/jobfinder/internal/user"

	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Phone       string          `json:"phone"`
	Role        string          `json:"role"`
	Location    string          `json:"location"`
	Title       string          `json:"title"`
	Skills      json.RawMessage `json:"skills"`
	CompanyName string          `json:"companyName"`
	Industry    string          `json:"industry"`
	Bio         string          `json:"bio"`
}

type authResult struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

func SignupHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
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
			svr.Log(err, "unable to hash password at signup")
			svr.RespondError(w, http.StatusInternalServerError, "Signup failed")
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
			svr.Log(err, "unable to create user at signup")
			svr.RespondError(w, http.StatusInternalServerError, "Signup failed")
			return
		}
		token, err := middleware.NewUserToken(u.ID, svr.GetJWTSigningKey())
		if err != nil {
			svr.Log(err, "unable to sign jwt at signup")
			svr.RespondError(w, http.StatusInternalServerError, "Signup failed")
			return
		}
		svr.RespondData(w, http.StatusCreated, authResult{User: u, Token: token}, "Account created successfully")
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler answers unknown emails and wrong passwords with the exact
// same status and message so callers cannot enumerate accounts.
func LoginHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			svr.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if req.Email == "" || req.Password == "" {
			svr.RespondError(w, http.StatusBadRequest, "Email and password are required")
			return
		}
		u, err := userRepo.GetUserByEmail(req.Email)
		if err != nil {
			if err == user.ErrNotFound {
				svr.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
				return
			}
			svr.Log(err, "unable to look up user at login")
			svr.RespondError(w, http.StatusInternalServerError, "Login failed")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
			svr.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if err := userRepo.UpdateLastLogin(u.ID); err != nil {
			svr.Log(err, "unable to update last login")
		}
		u.LastLogin = time.Now().UTC().Format("2006-01-02")
		u.Password = ""
		token, err := middleware.NewUserToken(u.ID, svr.GetJWTSigningKey())
		if err != nil {
			svr.Log(err, "unable to sign jwt at login")
			svr.RespondError(w, http.StatusInternalServerError, "Login failed")
			return
		}
		svr.RespondData(w, http.StatusOK, authResult{User: u, Token: token}, "Logged in successfully")
	}
}

func MeHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.GetUserFromContext(r)
		if !ok {
			svr.RespondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		svr.RespondData(w, http.StatusOK, u, "User found")
	}
}

// stringList accepts either a JSON array of strings or a bare string,
// wrapping the latter into a one-element list.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return []string{}
}
