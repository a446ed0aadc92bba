package main

import (
	"log"
	"net/http"

	"github.com/nephsir/jobfinder/internal/application"
	"github.com/nephsir/jobfinder/internal/config"
	"github.com/nephsir/jobfinder/internal/database"
	"github.com/nephsir/jobfinder/internal/handler"
	"github.com/nephsir/jobfinder/internal/job"
	"github.com/nephsir/jobfinder/internal/middleware"
	"github.com/nephsir/jobfinder/internal/realtime"
	"github.com/nephsir/jobfinder/internal/server"
	"github.com/nephsir/jobfinder/internal/user"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config: %+v", err)
	}
	conn, err := database.GetDbConn(
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)
	if err != nil {
		log.Fatalf("unable to connect to postgres: %v", err)
	}
	defer database.CloseDbConn(conn)

	userRepo := user.NewRepository(conn)
	jobRepo := job.NewRepository(conn)
	applicationRepo := application.NewRepository(conn)

	hub := realtime.NewHub()
	go hub.Run()

	svr := server.NewServer(cfg, conn, mux.NewRouter())

	authed := func(next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
		return middleware.UserAuthenticatedMiddleware(userRepo, cfg.JwtSigningKey, next)
	}

	//
	// auth routes
	//

	svr.RegisterRoute("/api/auth/signup", handler.SignupHandler(svr, userRepo), []string{"POST"})
	svr.RegisterRoute("/api/auth/login", handler.LoginHandler(svr, userRepo), []string{"POST"})
	svr.RegisterRoute("/api/auth/me", authed(handler.MeHandler(svr)), []string{"GET"})

	//
	// job routes
	//

	svr.RegisterRoute("/api/jobs", handler.GetAllJobsHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs", authed(handler.CreateJobHandler(svr, jobRepo, hub)), []string{"POST"})
	svr.RegisterRoute("/api/jobs/me", authed(handler.GetMyJobsHandler(svr, jobRepo)), []string{"GET"})
	svr.RegisterRoute("/api/jobs/search", handler.SearchJobsHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs/categories", handler.GetCategoriesHandler(svr), []string{"GET"})
	svr.RegisterRoute("/api/jobs/titles", handler.GetJobTitlesHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs/{id}", handler.GetJobByIDHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs/{id}", authed(handler.UpdateJobHandler(svr, jobRepo)), []string{"PUT"})
	svr.RegisterRoute("/api/jobs/{id}", authed(handler.DeleteJobHandler(svr, jobRepo)), []string{"DELETE"})

	//
	// application routes
	//

	svr.RegisterRoute("/api/applications", handler.GetAllApplicationsHandler(svr, applicationRepo), []string{"GET"})
	svr.RegisterRoute("/api/applications", handler.CreateApplicationHandler(svr, applicationRepo, hub), []string{"POST"})
	svr.RegisterRoute("/api/applications/me", authed(handler.GetMyApplicationsHandler(svr, applicationRepo)), []string{"GET"})
	svr.RegisterRoute("/api/applications/me/by-job/{jobId}", authed(handler.DeleteMyApplicationByJobHandler(svr, applicationRepo)), []string{"DELETE"})
	svr.RegisterRoute("/api/applications/user/{userId}", handler.GetApplicationsByUserHandler(svr, applicationRepo), []string{"GET"})
	svr.RegisterRoute("/api/applications/{id}", handler.GetApplicationByIDHandler(svr, applicationRepo), []string{"GET"})
	svr.RegisterRoute("/api/applications/{id}/status", handler.UpdateApplicationStatusHandler(svr, applicationRepo, hub), []string{"PUT"})
	svr.RegisterRoute("/api/applications/{id}", authed(handler.DeleteApplicationHandler(svr, applicationRepo)), []string{"DELETE"})

	//
	// user routes
	//

	svr.RegisterRoute("/api/users", handler.GetAllUsersHandler(svr, userRepo), []string{"GET"})
	svr.RegisterRoute("/api/users", handler.CreateUserHandler(svr, userRepo), []string{"POST"})
	svr.RegisterRoute("/api/users/me/skipped", authed(handler.GetMySkippedHandler(svr, userRepo)), []string{"GET"})
	svr.RegisterRoute("/api/users/me/skipped", authed(handler.AddSkippedHandler(svr, userRepo)), []string{"POST"})
	svr.RegisterRoute("/api/users/me/skipped/clear", authed(handler.ClearSkippedHandler(svr, userRepo)), []string{"PUT"})
	svr.RegisterRoute("/api/users/me/skipped/{jobId}", authed(handler.RemoveSkippedHandler(svr, userRepo)), []string{"DELETE"})
	svr.RegisterRoute("/api/users/{id}", handler.GetUserByIDHandler(svr, userRepo), []string{"GET"})
	svr.RegisterRoute("/api/users/{id}", authed(handler.UpdateUserHandler(svr, userRepo)), []string{"PUT"})
	svr.RegisterRoute("/api/users/{id}", handler.DeleteUserHandler(svr, userRepo), []string{"DELETE"})

	//
	// websocket endpoint
	//

	events := handler.NewClientEvents(svr, jobRepo, applicationRepo, hub)
	svr.RegisterRoute("/ws", realtime.ServeWS(hub, events), []string{"GET"})

	log.Fatal(svr.Run())
}
