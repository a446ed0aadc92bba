package database

import (
	"database/sql"
	"fmt"
)

// Table Structure:
//
// CREATE TABLE IF NOT EXISTS users (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	email VARCHAR(255) NOT NULL UNIQUE,
// 	password CHAR(60) NOT NULL,
// 	first_name VARCHAR(100) NOT NULL,
// 	last_name VARCHAR(100) NOT NULL,
// 	phone VARCHAR(50) NOT NULL DEFAULT '',
// 	role VARCHAR(20) NOT NULL DEFAULT 'jobseeker',
// 	avatar TEXT NOT NULL DEFAULT '',
// 	location VARCHAR(255) NOT NULL DEFAULT '',
// 	title VARCHAR(255) NOT NULL DEFAULT '',
// 	skills TEXT[] NOT NULL DEFAULT '{}',
// 	experience TEXT NOT NULL DEFAULT '',
// 	education TEXT NOT NULL DEFAULT '',
// 	company_name VARCHAR(255) NOT NULL DEFAULT '',
// 	industry VARCHAR(255) NOT NULL DEFAULT '',
// 	bio TEXT NOT NULL DEFAULT '',
// 	saved_jobs TEXT[] NOT NULL DEFAULT '{}',
// 	skipped_job_ids TEXT[] NOT NULL DEFAULT '{}',
// 	last_login CHAR(10) NOT NULL DEFAULT '',
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );
//
// CREATE TABLE IF NOT EXISTS job (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	slug VARCHAR(255) NOT NULL,
// 	title VARCHAR(255) NOT NULL,
// 	company VARCHAR(255) NOT NULL,
// 	location VARCHAR(255) NOT NULL,
// 	type VARCHAR(20) NOT NULL,
// 	category VARCHAR(100) NOT NULL DEFAULT 'Technology',
// 	salary VARCHAR(100) NOT NULL DEFAULT '',
// 	description TEXT NOT NULL,
// 	requirements TEXT[] NOT NULL DEFAULT '{}',
// 	benefits TEXT[] NOT NULL DEFAULT '{}',
// 	posted_date CHAR(10) NOT NULL,
// 	deadline VARCHAR(10) NOT NULL DEFAULT '',
// 	status VARCHAR(10) NOT NULL DEFAULT 'active',
// 	applicants INTEGER NOT NULL DEFAULT 0 CHECK (applicants >= 0),
// 	response_time VARCHAR(100) NOT NULL DEFAULT '',
// 	interview_process TEXT NOT NULL DEFAULT '',
// 	logo TEXT NOT NULL DEFAULT '',
// 	employer_id CHAR(27),
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );
// CREATE INDEX job_status_idx ON job (status);
// CREATE INDEX job_employer_id_idx ON job (employer_id);
//
// CREATE TABLE IF NOT EXISTS application (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	job_id CHAR(27) NOT NULL,
// 	user_id CHAR(27) NOT NULL,
// 	job_title VARCHAR(255) NOT NULL,
// 	company VARCHAR(255) NOT NULL,
// 	applicant_name VARCHAR(255) NOT NULL,
// 	email VARCHAR(255) NOT NULL,
// 	phone VARCHAR(50) NOT NULL DEFAULT '',
// 	location VARCHAR(255) NOT NULL DEFAULT '',
// 	cover_letter TEXT NOT NULL DEFAULT '',
// 	resume_url TEXT NOT NULL DEFAULT '',
// 	status VARCHAR(30) NOT NULL DEFAULT 'submitted',
// 	applied_date CHAR(10) NOT NULL,
// 	last_updated CHAR(10) NOT NULL,
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id),
// 	UNIQUE (user_id, job_id)
// );
// CREATE INDEX application_user_id_idx ON application (user_id);
// CREATE INDEX application_job_id_idx ON application (job_id);

func GetDbConn(databaseUser string, databasePassword string, databaseHost string, databasePort string, databaseName string, sslMode string) (*sql.DB, error) {
	databaseURL := fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=%s",
		databaseUser,
		databasePassword,
		databaseHost,
		databasePort,
		databaseName,
		sslMode,
	)
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		return nil, err
	}
	return db, nil
}

func CloseDbConn(conn *sql.DB) {
	conn.Close()
}
