package user

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/segmentio/ksuid"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already registered")
)

const userColumns = `id, email, first_name, last_name, phone, role, avatar, location, title, skills, experience, education, company_name, industry, bio, saved_jobs, skipped_job_ids, last_login, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// CreateUser inserts the user with a fresh ksuid and a lower-cased email.
// The unique index on email is the source of truth for duplicates: a
// constraint violation surfaces as ErrEmailExists regardless of which
// concurrent request lost the race.
func (r *Repository) CreateUser(u *User) error {
	userID, err := ksuid.NewRandom()
	if err != nil {
		return err
	}
	u.ID = userID.String()
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now().UTC()
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.SavedJobs == nil {
		u.SavedJobs = []string{}
	}
	if u.SkippedJobIDs == nil {
		u.SkippedJobIDs = []string{}
	}
	_, err = r.db.Exec(
		`INSERT INTO users (id, email, password, first_name, last_name, phone, role, avatar, location, title, skills, experience, education, company_name, industry, bio, saved_jobs, skipped_job_ids, last_login, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		u.ID,
		u.Email,
		u.Password,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.Role,
		u.Avatar,
		u.Location,
		u.Title,
		pq.Array(u.Skills),
		u.Experience,
		u.Education,
		u.CompanyName,
		u.Industry,
		u.Bio,
		pq.Array(u.SavedJobs),
		pq.Array(u.SkippedJobIDs),
		u.LastLogin,
		u.CreatedAt,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrEmailExists
	}
	return err
}

// GetUserByEmail returns the user including the password hash. Used by the
// login path only, every other read goes through GetUser.
func (r *Repository) GetUserByEmail(email string) (User, error) {
	u := User{}
	row := r.db.QueryRow(`SELECT id, email, password, first_name, last_name, phone, role, avatar, location, title, skills, experience, education, company_name, industry, bio, saved_jobs, skipped_job_ids, last_login, created_at FROM users WHERE email = $1`, strings.ToLower(email))
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.Avatar, &u.Location, &u.Title, pq.Array(&u.Skills), &u.Experience, &u.Education, &u.CompanyName, &u.Industry, &u.Bio, pq.Array(&u.SavedJobs), pq.Array(&u.SkippedJobIDs), &u.LastLogin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	return u, nil
}

func (r *Repository) GetUser(id string) (User, error) {
	u := User{}
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	err := scanUser(row, &u)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	return u, nil
}

func (r *Repository) GetAllUsers() ([]User, error) {
	users := []User{}
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return users, err
	}
	defer rows.Close()
	for rows.Next() {
		u := User{}
		if err := scanUser(rows, &u); err != nil {
			return users, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser writes every profile field. The password column is never
// touched here, password changes have no API surface.
func (r *Repository) UpdateUser(u *User) error {
	res, err := r.db.Exec(
		`UPDATE users SET email = $2, first_name = $3, last_name = $4, phone = $5, role = $6, avatar = $7, location = $8, title = $9, skills = $10, experience = $11, education = $12, company_name = $13, industry = $14, bio = $15, saved_jobs = $16, last_login = $17 WHERE id = $1`,
		u.ID,
		strings.ToLower(u.Email),
		u.FirstName,
		u.LastName,
		u.Phone,
		u.Role,
		u.Avatar,
		u.Location,
		u.Title,
		pq.Array(u.Skills),
		u.Experience,
		u.Education,
		u.CompanyName,
		u.Industry,
		u.Bio,
		pq.Array(u.SavedJobs),
		u.LastLogin,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrEmailExists
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateLastLogin(id string) error {
	_, err := r.db.Exec(`UPDATE users SET last_login = $2 WHERE id = $1`, id, time.Now().UTC().Format("2006-01-02"))
	return err
}

func (r *Repository) DeleteUser(id string) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetSkippedJobIDs(userID string) ([]string, error) {
	skipped := []string{}
	row := r.db.QueryRow(`SELECT skipped_job_ids FROM users WHERE id = $1`, userID)
	err := row.Scan(pq.Array(&skipped))
	if err == sql.ErrNoRows {
		return skipped, ErrNotFound
	}
	if err != nil {
		return skipped, err
	}
	return skipped, nil
}

// AddSkippedJob appends jobID with set semantics: appending an id that is
// already present leaves the array unchanged. Single atomic statement so
// concurrent skips cannot produce duplicates.
func (r *Repository) AddSkippedJob(userID, jobID string) ([]string, error) {
	skipped := []string{}
	row := r.db.QueryRow(
		`UPDATE users SET skipped_job_ids = CASE WHEN $2 = ANY(skipped_job_ids) THEN skipped_job_ids ELSE array_append(skipped_job_ids, $2) END WHERE id = $1 RETURNING skipped_job_ids`,
		userID,
		jobID,
	)
	err := row.Scan(pq.Array(&skipped))
	if err == sql.ErrNoRows {
		return skipped, ErrNotFound
	}
	if err != nil {
		return skipped, err
	}
	return skipped, nil
}

func (r *Repository) RemoveSkippedJob(userID, jobID string) ([]string, error) {
	skipped := []string{}
	row := r.db.QueryRow(`UPDATE users SET skipped_job_ids = array_remove(skipped_job_ids, $2) WHERE id = $1 RETURNING skipped_job_ids`, userID, jobID)
	err := row.Scan(pq.Array(&skipped))
	if err == sql.ErrNoRows {
		return skipped, ErrNotFound
	}
	if err != nil {
		return skipped, err
	}
	return skipped, nil
}

func (r *Repository) ClearSkippedJobs(userID string) ([]string, error) {
	skipped := []string{}
	row := r.db.QueryRow(`UPDATE users SET skipped_job_ids = '{}' WHERE id = $1 RETURNING skipped_job_ids`, userID)
	err := row.Scan(pq.Array(&skipped))
	if err == sql.ErrNoRows {
		return skipped, ErrNotFound
	}
	if err != nil {
		return skipped, err
	}
	return skipped, nil
}

// DefaultAvatarURL mirrors the avatar the frontend expects when a user
// signs up without uploading one.
func DefaultAvatarURL(firstName, lastName string) string {
	name := url.QueryEscape(fmt.Sprintf("%s %s", firstName, lastName))
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=1976d2&color=fff", name)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner, u *User) error {
	return row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.Avatar, &u.Location, &u.Title, pq.Array(&u.Skills), &u.Experience, &u.Education, &u.CompanyName, &u.Industry, &u.Bio, pq.Array(&u.SavedJobs), pq.Array(&u.SkippedJobIDs), &u.LastLogin, &u.CreatedAt)
}
