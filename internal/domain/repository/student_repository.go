package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"studentms/internal/common"
	"studentms/internal/domain/model"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type ListStudentsFilter struct {
	DepartmentID string
	SectionID    string
	Page         int
	Limit        int
}

// ReportFilter narrows report queries; zero values mean "no constraint".
type ReportFilter struct {
	DepartmentID string
	SectionID    string
	StartDate    *time.Time
	EndDate      *time.Time
}

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	FindByID(ctx context.Context, id string) (*model.Student, error)
	FindByRollNumber(ctx context.Context, rollNumber string) (*model.Student, error)
	FindByEmail(ctx context.Context, email string) (*model.Student, error)
	List(ctx context.Context, filter ListStudentsFilter) ([]model.Student, int, error)
	ListForReport(ctx context.Context, filter ReportFilter) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string) error
	CountByDepartment(ctx context.Context, departmentID string) (int, error)
	CountBySection(ctx context.Context, sectionID string) (int, error)
}

type pgStudentRepository struct {
	db *sql.DB
}

func NewPgStudentRepository(db *sql.DB) StudentRepository {
	return &pgStudentRepository{db: db}
}

// Every read joins the referenced department and section so responses carry the full
// records, mirroring what clients expect from the list and report endpoints.
const studentSelect = `SELECT s.id, s.name, s.roll_number, s.department_id, s.section_id,
	s.email, s.contact, s.created_at, s.updated_at,
	d.id, d.name, d.code, d.description, d.created_at, d.updated_at,
	sec.id, sec.name, sec.department_id, sec.capacity, sec.current_strength, sec.created_at, sec.updated_at
	FROM students s
	JOIN departments d ON d.id = s.department_id
	JOIN sections sec ON sec.id = s.section_id`

func scanStudent(row interface{ Scan(...interface{}) error }) (*model.Student, error) {
	student := &model.Student{Department: &model.Department{}, Section: &model.Section{}}
	var deptDescription sql.NullString
	err := row.Scan(
		&student.ID, &student.Name, &student.RollNumber, &student.DepartmentID, &student.SectionID,
		&student.Email, &student.Contact, &student.CreatedAt, &student.UpdatedAt,
		&student.Department.ID, &student.Department.Name, &student.Department.Code,
		&deptDescription, &student.Department.CreatedAt, &student.Department.UpdatedAt,
		&student.Section.ID, &student.Section.Name, &student.Section.DepartmentID,
		&student.Section.Capacity, &student.Section.CurrentStrength,
		&student.Section.CreatedAt, &student.Section.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	student.Department.Description = deptDescription.String
	return student, nil
}

func (r *pgStudentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `INSERT INTO students (id, name, roll_number, department_id, section_id, email, contact)
	          VALUES ($1, $2, upper($3), $4, $5, lower($6), $7)`
	_, err := r.db.ExecContext(ctx, query,
		student.ID, student.Name, student.RollNumber, student.DepartmentID,
		student.SectionID, student.Email, student.Contact)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "roll_number") {
				return common.NewError(400, common.CodeDuplicateRollNumber, "Roll number already exists")
			}
			return common.NewError(400, common.CodeDuplicateEmail, "Email already exists")
		}
		return fmt.Errorf("pgStudentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgStudentRepository) FindByID(ctx context.Context, id string) (*model.Student, error) {
	student, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgStudentRepository.FindByID: %w", err)
	}
	return student, nil
}

func (r *pgStudentRepository) FindByRollNumber(ctx context.Context, rollNumber string) (*model.Student, error) {
	student, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+` WHERE s.roll_number = upper($1)`, rollNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgStudentRepository.FindByRollNumber: %w", err)
	}
	return student, nil
}

func (r *pgStudentRepository) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	student, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+` WHERE lower(s.email) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgStudentRepository.FindByEmail: %w", err)
	}
	return student, nil
}

func (r *pgStudentRepository) List(ctx context.Context, filter ListStudentsFilter) ([]model.Student, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if filter.DepartmentID != "" {
		where = append(where, fmt.Sprintf("s.department_id = $%d", idx))
		args = append(args, filter.DepartmentID)
		idx++
	}
	if filter.SectionID != "" {
		where = append(where, fmt.Sprintf("s.section_id = $%d", idx))
		args = append(args, filter.SectionID)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM students s` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgStudentRepository.List count: %w", err)
	}

	query := studentSelect + whereClause +
		fmt.Sprintf(" ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	students, err := r.queryStudents(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *pgStudentRepository) ListForReport(ctx context.Context, filter ReportFilter) ([]model.Student, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if filter.DepartmentID != "" {
		where = append(where, fmt.Sprintf("s.department_id = $%d", idx))
		args = append(args, filter.DepartmentID)
		idx++
	}
	if filter.SectionID != "" {
		where = append(where, fmt.Sprintf("s.section_id = $%d", idx))
		args = append(args, filter.SectionID)
		idx++
	}
	if filter.StartDate != nil {
		where = append(where, fmt.Sprintf("s.created_at >= $%d", idx))
		args = append(args, *filter.StartDate)
		idx++
	}
	if filter.EndDate != nil {
		where = append(where, fmt.Sprintf("s.created_at <= $%d", idx))
		args = append(args, *filter.EndDate)
		idx++
	}

	query := studentSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.roll_number"

	return r.queryStudents(ctx, query, args...)
}

func (r *pgStudentRepository) Update(ctx context.Context, student *model.Student) error {
	query := `UPDATE students SET name = $2, roll_number = upper($3), department_id = $4,
	          section_id = $5, email = lower($6), contact = $7, updated_at = now()
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		student.ID, student.Name, student.RollNumber, student.DepartmentID,
		student.SectionID, student.Email, student.Contact)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "roll_number") {
				return common.NewError(400, common.CodeDuplicateRollNumber, "Roll number already exists")
			}
			return common.NewError(400, common.CodeDuplicateEmail, "Email already exists")
		}
		return fmt.Errorf("pgStudentRepository.Update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgStudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgStudentRepository.Delete: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgStudentRepository) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM students WHERE department_id = $1`, departmentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgStudentRepository.CountByDepartment: %w", err)
	}
	return count, nil
}

func (r *pgStudentRepository) CountBySection(ctx context.Context, sectionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM students WHERE section_id = $1`, sectionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgStudentRepository.CountBySection: %w", err)
	}
	return count, nil
}

func (r *pgStudentRepository) queryStudents(ctx context.Context, query string, args ...interface{}) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgStudentRepository query: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("pgStudentRepository scan: %w", err)
		}
		students = append(students, *student)
	}
	return students, rows.Err()
}
