package application

import (
	"database/sql"
	"errors"
	"time"

	"github.com/segmentio/ksuid"
)

var (
	ErrNotFound   = errors.New("application not found")
	ErrInvalidJob = errors.New("invalid job id")
)

const applicationColumns = `id, job_id, user_id, job_title, company, applicant_name, email, phone, location, cover_letter, resume_url, status, applied_date, last_updated, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) GetAllApplications() ([]Application, error) {
	return r.queryApplications(`SELECT ` + applicationColumns + ` FROM application ORDER BY created_at DESC`)
}

func (r *Repository) GetApplicationsByUser(userID string) ([]Application, error) {
	return r.queryApplications(`SELECT `+applicationColumns+` FROM application WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *Repository) GetApplicationByID(id string) (Application, error) {
	a := Application{}
	row := r.db.QueryRow(`SELECT `+applicationColumns+` FROM application WHERE id = $1`, id)
	err := scanApplication(row, &a)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	if err != nil {
		return a, err
	}
	return a, nil
}

// CreateApplication submits an application, idempotently on (userID, jobID).
// The insert and the applicant counter increment run in one transaction and
// the unique index on (user_id, job_id) arbitrates concurrent submissions:
// exactly one of them inserts and increments, the rest observe the existing
// record. Returns whether a new record was created.
func (r *Repository) CreateApplication(a *Application) (bool, error) {
	if _, err := ksuid.Parse(a.JobID); err != nil {
		return false, ErrInvalidJob
	}
	applicationID, err := ksuid.NewRandom()
	if err != nil {
		return false, err
	}
	a.ID = applicationID.String()
	a.Status = StatusSubmitted
	a.CreatedAt = time.Now().UTC()
	a.AppliedDate = a.CreatedAt.Format("2006-01-02")
	a.LastUpdated = a.AppliedDate

	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	res, err := tx.Exec(
		`INSERT INTO application (id, job_id, user_id, job_title, company, applicant_name, email, phone, location, cover_letter, resume_url, status, applied_date, last_updated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (user_id, job_id) DO NOTHING`,
		a.ID,
		a.JobID,
		a.UserID,
		a.JobTitle,
		a.Company,
		a.ApplicantName,
		a.Email,
		a.Phone,
		a.Location,
		a.CoverLetter,
		a.ResumeURL,
		a.Status,
		a.AppliedDate,
		a.LastUpdated,
		a.CreatedAt,
	)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return false, err
	}
	if inserted == 0 {
		// already applied: return the existing record, no increment
		tx.Rollback()
		existing := Application{}
		row := r.db.QueryRow(`SELECT `+applicationColumns+` FROM application WHERE user_id = $1 AND job_id = $2`, a.UserID, a.JobID)
		if err := scanApplication(row, &existing); err != nil {
			return false, err
		}
		*a = existing
		return false, nil
	}
	if _, err := tx.Exec(`UPDATE job SET applicants = applicants + 1 WHERE id = $1`, a.JobID); err != nil {
		tx.Rollback()
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) UpdateApplicationStatus(id, status string) (Application, error) {
	a := Application{}
	row := r.db.QueryRow(
		`UPDATE application SET status = $2, last_updated = $3 WHERE id = $1 RETURNING `+applicationColumns,
		id,
		status,
		time.Now().UTC().Format("2006-01-02"),
	)
	err := scanApplication(row, &a)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	if err != nil {
		return a, err
	}
	return a, nil
}

// DeleteApplication removes the record and decrements the owning job's
// applicant counter in the same transaction. The decrement floors at zero
// and is a no-op when the job has already been deleted.
func (r *Repository) DeleteApplication(id string) error {
	return r.deleteWhere(`DELETE FROM application WHERE id = $1 RETURNING job_id`, id)
}

// DeleteApplicationByUserAndJob is the self-service withdrawal path keyed
// on the unique (userID, jobID) pair.
func (r *Repository) DeleteApplicationByUserAndJob(userID, jobID string) error {
	return r.deleteWhere(`DELETE FROM application WHERE user_id = $1 AND job_id = $2 RETURNING job_id`, userID, jobID)
}

func (r *Repository) deleteWhere(query string, args ...interface{}) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	var jobID string
	err = tx.QueryRow(query, args...).Scan(&jobID)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return ErrNotFound
	}
	if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`UPDATE job SET applicants = GREATEST(applicants - 1, 0) WHERE id = $1`, jobID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repository) queryApplications(query string, args ...interface{}) ([]Application, error) {
	applications := []Application{}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return applications, err
	}
	defer rows.Close()
	for rows.Next() {
		a := Application{}
		if err := scanApplication(rows, &a); err != nil {
			return applications, err
		}
		applications = append(applications, a)
	}
	return applications, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner, a *Application) error {
	return row.Scan(&a.ID, &a.JobID, &a.UserID, &a.JobTitle, &a.Company, &a.ApplicantName, &a.Email, &a.Phone, &a.Location, &a.CoverLetter, &a.ResumeURL, &a.Status, &a.AppliedDate, &a.LastUpdated, &a.CreatedAt)
}
