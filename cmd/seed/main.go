package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"studentms/internal/common"
	"studentms/internal/common/security"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
	"studentms/internal/platform/config"
	"studentms/internal/platform/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                    UUID PRIMARY KEY,
    username              TEXT NOT NULL CONSTRAINT users_username_key UNIQUE,
    email                 TEXT NOT NULL CONSTRAINT users_email_key UNIQUE,
    hashed_password       TEXT NOT NULL,
    role                  TEXT NOT NULL DEFAULT 'Faculty',
    profile               JSONB NOT NULL DEFAULT '{}'::jsonb,
    preferences           JSONB NOT NULL DEFAULT '{}'::jsonb,
    password_changed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    password_history      JSONB NOT NULL DEFAULT '[]'::jsonb,
    failed_login_attempts INT NOT NULL DEFAULT 0,
    locked_until          TIMESTAMPTZ,
    two_factor_enabled    BOOLEAN NOT NULL DEFAULT false,
    two_factor_secret     TEXT,
    last_login            TIMESTAMPTZ,
    is_banned             BOOLEAN NOT NULL DEFAULT false,
    banned_at             TIMESTAMPTZ,
    banned_by             UUID,
    ban_reason            TEXT,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS departments (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL CONSTRAINT departments_name_key UNIQUE,
    code        TEXT NOT NULL CONSTRAINT departments_code_key UNIQUE,
    description TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sections (
    id               UUID PRIMARY KEY,
    name             TEXT NOT NULL,
    department_id    UUID NOT NULL REFERENCES departments(id),
    capacity         INT NOT NULL DEFAULT 60,
    current_strength INT NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT sections_department_name_key UNIQUE (department_id, name)
);

CREATE TABLE IF NOT EXISTS students (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    roll_number   TEXT NOT NULL CONSTRAINT students_roll_number_key UNIQUE,
    department_id UUID NOT NULL REFERENCES departments(id),
    section_id    UUID NOT NULL REFERENCES sections(id),
    email         TEXT NOT NULL CONSTRAINT students_email_key UNIQUE,
    contact       TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_students_department ON students (department_id);
CREATE INDEX IF NOT EXISTS idx_students_section ON students (section_id);
CREATE INDEX IF NOT EXISTS idx_sections_department ON sections (department_id);
`

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "Admin@123"
)

func main() {
	sample := flag.Bool("sample", false, "also insert sample departments, sections and students")
	flag.Parse()

	config.Load()
	database.Connect()
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if _, err := database.DB.ExecContext(ctx, schema); err != nil {
		log.Fatalf("applying schema: %v", err)
	}
	log.Println("Schema applied.")

	userRepo := repository.NewPgUserRepository(database.DB)
	if err := ensureAdmin(ctx, userRepo); err != nil {
		log.Fatalf("seeding admin: %v", err)
	}

	if *sample {
		if err := seedSampleData(ctx); err != nil {
			log.Fatalf("seeding sample data: %v", err)
		}
		log.Println("Sample data inserted.")
	}

	log.Println("Seeding complete.")
}

func ensureAdmin(ctx context.Context, userRepo repository.UserRepository) error {
	if _, err := userRepo.FindByUsername(ctx, defaultAdminUsername); err == nil {
		log.Println("Admin account already exists, skipping.")
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}
	admin := &model.User{
		ID:             uuid.NewString(),
		Username:       defaultAdminUsername,
		Email:          defaultAdminEmail,
		HashedPassword: hash,
		Role:           model.RoleAdmin,
		Preferences:    model.DefaultPreferences(),
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}
	log.Printf("Admin account created (username %q). Change the default password immediately.", defaultAdminUsername)
	return nil
}

func seedSampleData(ctx context.Context) error {
	departments := []struct {
		name, code, description string
	}{
		{"Computer Science", "CS", "Computer Science and Engineering"},
		{"Electronics", "EC", "Electronics and Communication"},
		{"Mechanical", "ME", "Mechanical Engineering"},
		{"Civil", "CE", "Civil Engineering"},
	}

	for i, d := range departments {
		deptID := uuid.NewString()
		_, err := database.DB.ExecContext(ctx,
			`INSERT INTO departments (id, name, code, description)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (code) DO NOTHING`,
			deptID, d.name, d.code, d.description)
		if err != nil {
			return fmt.Errorf("insert department %s: %w", d.code, err)
		}

		// The insert is skipped on conflict, so read the id back.
		if err := database.DB.QueryRowContext(ctx,
			`SELECT id FROM departments WHERE code = $1`, d.code).Scan(&deptID); err != nil {
			return fmt.Errorf("lookup department %s: %w", d.code, err)
		}

		sectionIDs := make([]string, 0, 2)
		for _, name := range []string{"A", "B"} {
			sectionID := uuid.NewString()
			_, err := database.DB.ExecContext(ctx,
				`INSERT INTO sections (id, name, department_id, capacity)
				 VALUES ($1, $2, $3, 60)
				 ON CONFLICT (department_id, name) DO NOTHING`,
				sectionID, name, deptID)
			if err != nil {
				return fmt.Errorf("insert section %s-%s: %w", d.code, name, err)
			}
			if err := database.DB.QueryRowContext(ctx,
				`SELECT id FROM sections WHERE department_id = $1 AND name = $2`,
				deptID, name).Scan(&sectionID); err != nil {
				return fmt.Errorf("lookup section %s-%s: %w", d.code, name, err)
			}
			sectionIDs = append(sectionIDs, sectionID)
		}

		for j := 1; j <= 4; j++ {
			roll := fmt.Sprintf("%s%03d", d.code, i*10+j)
			_, err := database.DB.ExecContext(ctx,
				`INSERT INTO students (id, name, roll_number, department_id, section_id, email, contact)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (roll_number) DO NOTHING`,
				uuid.NewString(),
				fmt.Sprintf("%s Student %d", d.name, j),
				roll,
				deptID,
				sectionIDs[(j-1)%len(sectionIDs)],
				fmt.Sprintf("%s@students.example.com", roll),
				fmt.Sprintf("98%08d", i*100+j))
			if err != nil {
				return fmt.Errorf("insert student %s: %w", roll, err)
			}
		}
	}
	return nil
}
