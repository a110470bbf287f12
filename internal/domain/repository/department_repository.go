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

type DepartmentRepository interface {
	Create(ctx context.Context, department *model.Department) error
	FindByID(ctx context.Context, id string) (*model.Department, error)
	FindByNameOrCode(ctx context.Context, name, code string) (*model.Department, error)
	List(ctx context.Context) ([]model.Department, error)
	Update(ctx context.Context, department *model.Department) error
	Delete(ctx context.Context, id string) error
}

type pgDepartmentRepository struct {
	db *sql.DB
}

func NewPgDepartmentRepository(db *sql.DB) DepartmentRepository {
	return &pgDepartmentRepository{db: db}
}

const departmentColumns = `id, name, code, description, created_at, updated_at`

func scanDepartment(row interface{ Scan(...interface{}) error }) (*model.Department, error) {
	department := &model.Department{}
	var description sql.NullString
	err := row.Scan(&department.ID, &department.Name, &department.Code, &description,
		&department.CreatedAt, &department.UpdatedAt)
	if err != nil {
		return nil, err
	}
	department.Description = description.String
	return department, nil
}

func (r *pgDepartmentRepository) Create(ctx context.Context, department *model.Department) error {
	query := `INSERT INTO departments (id, name, code, description)
	          VALUES ($1, $2, upper($3), $4)`
	_, err := r.db.ExecContext(ctx, query,
		department.ID, department.Name, department.Code, department.Description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.NewError(400, common.CodeDuplicateEntry, "Department with this name or code already exists")
		}
		return fmt.Errorf("pgDepartmentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgDepartmentRepository) FindByID(ctx context.Context, id string) (*model.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id = $1`
	department, err := scanDepartment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgDepartmentRepository.FindByID: %w", err)
	}
	return department, nil
}

func (r *pgDepartmentRepository) FindByNameOrCode(ctx context.Context, name, code string) (*model.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE name = $1 OR code = upper($2)`
	department, err := scanDepartment(r.db.QueryRowContext(ctx, query, name, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgDepartmentRepository.FindByNameOrCode: %w", err)
	}
	return department, nil
}

func (r *pgDepartmentRepository) List(ctx context.Context) ([]model.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgDepartmentRepository.List: %w", err)
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("pgDepartmentRepository.List scan: %w", err)
		}
		departments = append(departments, *department)
	}
	return departments, rows.Err()
}

func (r *pgDepartmentRepository) Update(ctx context.Context, department *model.Department) error {
	query := `UPDATE departments SET name = $2, code = upper($3), description = $4, updated_at = now()
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		department.ID, department.Name, department.Code, department.Description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.NewError(400, common.CodeDuplicateEntry, "Department with this name or code already exists")
		}
		return fmt.Errorf("pgDepartmentRepository.Update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgDepartmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgDepartmentRepository.Delete: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
