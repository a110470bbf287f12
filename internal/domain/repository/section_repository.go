package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"studentms/internal/common"
	"studentms/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type SectionRepository interface {
	Create(ctx context.Context, section *model.Section) error
	FindByID(ctx context.Context, id string) (*model.Section, error)
	List(ctx context.Context, departmentID string) ([]model.Section, error)
	Update(ctx context.Context, section *model.Section) error
	Delete(ctx context.Context, id string) error
	CountByDepartment(ctx context.Context, departmentID string) (int, error)
}

type pgSectionRepository struct {
	db *sql.DB
}

func NewPgSectionRepository(db *sql.DB) SectionRepository {
	return &pgSectionRepository{db: db}
}

const sectionSelect = `SELECT sec.id, sec.name, sec.department_id, sec.capacity, sec.current_strength,
	sec.created_at, sec.updated_at,
	d.id, d.name, d.code, d.description, d.created_at, d.updated_at
	FROM sections sec
	JOIN departments d ON d.id = sec.department_id`

func scanSection(row interface{ Scan(...interface{}) error }) (*model.Section, error) {
	section := &model.Section{Department: &model.Department{}}
	var description sql.NullString
	err := row.Scan(
		&section.ID, &section.Name, &section.DepartmentID, &section.Capacity, &section.CurrentStrength,
		&section.CreatedAt, &section.UpdatedAt,
		&section.Department.ID, &section.Department.Name, &section.Department.Code,
		&description, &section.Department.CreatedAt, &section.Department.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	section.Department.Description = description.String
	return section, nil
}

func (r *pgSectionRepository) Create(ctx context.Context, section *model.Section) error {
	query := `INSERT INTO sections (id, name, department_id, capacity, current_strength)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query,
		section.ID, section.Name, section.DepartmentID, section.Capacity, section.CurrentStrength)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.NewError(400, common.CodeDuplicateEntry, "Section name must be unique within the department")
		}
		return fmt.Errorf("pgSectionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSectionRepository) FindByID(ctx context.Context, id string) (*model.Section, error) {
	section, err := scanSection(r.db.QueryRowContext(ctx, sectionSelect+` WHERE sec.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSectionRepository.FindByID: %w", err)
	}
	return section, nil
}

func (r *pgSectionRepository) List(ctx context.Context, departmentID string) ([]model.Section, error) {
	query := sectionSelect
	args := []interface{}{}
	if departmentID != "" {
		query += ` WHERE sec.department_id = $1`
		args = append(args, departmentID)
	}
	query += ` ORDER BY d.name, sec.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSectionRepository.List: %w", err)
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("pgSectionRepository.List scan: %w", err)
		}
		sections = append(sections, *section)
	}
	return sections, rows.Err()
}

func (r *pgSectionRepository) Update(ctx context.Context, section *model.Section) error {
	query := `UPDATE sections SET name = $2, department_id = $3, capacity = $4,
	          current_strength = $5, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		section.ID, section.Name, section.DepartmentID, section.Capacity, section.CurrentStrength)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.NewError(400, common.CodeDuplicateEntry, "Section name must be unique within the department")
		}
		return fmt.Errorf("pgSectionRepository.Update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSectionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgSectionRepository.Delete: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSectionRepository) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sections WHERE department_id = $1`, departmentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgSectionRepository.CountByDepartment: %w", err)
	}
	return count, nil
}
