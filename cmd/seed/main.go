package main

import (
	"log"

	"github.com/nephsir/jobfinder/internal/config"
	"github.com/nephsir/jobfinder/internal/database"
	"github.com/nephsir/jobfinder/internal/job"
	"github.com/nephsir/jobfinder/internal/user"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Println("seeding demo users and jobs")
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config %v", err)
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

	employers := []user.User{
		{
			FirstName: "Acme",
			LastName:  "Recruiting",
			Email:     "hiring@acme.example",
			Role:      user.RoleEmployer,
			Location:  "Remote",
		},
		{
			FirstName: "Nimbus",
			LastName:  "Talent",
			Email:     "jobs@nimbus.example",
			Role:      user.RoleEmployer,
			Location:  "Berlin, Germany",
		},
	}
	jobseeker := user.User{
		FirstName: "Demo",
		LastName:  "Jobseeker",
		Email:     "demo@jobfinder.example",
		Role:      user.RoleJobseeker,
		Title:     "Software Engineer",
		Location:  "Lisbon, Portugal",
		Skills:    []string{"Go", "PostgreSQL", "Docker"},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("unable to hash seed password: %v", err)
	}

	var employerIDs []string
	for i := range employers {
		u := &employers[i]
		u.Password = string(hash)
		u.Avatar = user.DefaultAvatarURL(u.FirstName, u.LastName)
		err := userRepo.CreateUser(u)
		if err == user.ErrEmailExists {
			log.Printf("employer %s already seeded, skipping", u.Email)
			existing, err := userRepo.GetUserByEmail(u.Email)
			if err != nil {
				log.Fatal(err)
			}
			employerIDs = append(employerIDs, existing.ID)
			continue
		}
		if err != nil {
			log.Fatal(err)
		}
		employerIDs = append(employerIDs, u.ID)
		log.Printf("seeded employer %s", u.Email)
	}

	jobseeker.Password = string(hash)
	jobseeker.Avatar = user.DefaultAvatarURL(jobseeker.FirstName, jobseeker.LastName)
	if err := userRepo.CreateUser(&jobseeker); err != nil && err != user.ErrEmailExists {
		log.Fatal(err)
	}

	jobs := []job.Job{
		{
			Title:        "Senior Backend Engineer",
			Company:      "Acme Corp",
			Location:     "Remote",
			Type:         job.TypeRemote,
			Category:     "Technology",
			Salary:       "$120k - $150k",
			Description:  "Design and run the services behind our hiring marketplace.",
			Requirements: []string{"5+ years backend experience", "Strong SQL", "Production Go or similar"},
			Benefits:     []string{"Remote-first", "Learning budget"},
			EmployerID:   &employerIDs[0],
		},
		{
			Title:        "Product Designer",
			Company:      "Acme Corp",
			Location:     "New York, NY",
			Type:         job.TypeFullTime,
			Category:     "Design",
			Salary:       "$95k - $120k",
			Description:  "Own the candidate experience end to end.",
			Requirements: []string{"Portfolio of shipped work", "Figma"},
			Benefits:     []string{"Health insurance", "Equity"},
			EmployerID:   &employerIDs[0],
		},
		{
			Title:        "Marketing Manager",
			Company:      "Nimbus GmbH",
			Location:     "Berlin, Germany",
			Type:         job.TypePartTime,
			Category:     "Marketing",
			Salary:       "€55k pro rata",
			Description:  "Grow our employer brand across Europe.",
			Requirements: []string{"3+ years B2B marketing"},
			Benefits:     []string{"Flexible hours"},
			EmployerID:   &employerIDs[1],
		},
		{
			Title:        "Data Analyst",
			Company:      "Nimbus GmbH",
			Location:     "Berlin, Germany",
			Type:         job.TypeContract,
			Category:     "Technology",
			Salary:       "€450/day",
			Description:  "Build the reporting behind our placement funnel.",
			Requirements: []string{"SQL", "Dashboarding experience"},
			EmployerID:   &employerIDs[1],
		},
	}
	for i := range jobs {
		if err := jobRepo.CreateJob(&jobs[i]); err != nil {
			log.Fatal(err)
		}
		log.Printf("seeded job %s (%s)", jobs[i].Title, jobs[i].ID)
	}
	log.Println("done")
}
