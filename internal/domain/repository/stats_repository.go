package repository

import (
	"context"
	"database/sql"
	"fmt"
	"studentms/internal/domain/model"
)

// StatsRepository serves the dashboard aggregations. The grouping joins stand in for
// the aggregation pipelines a document store would run.
type StatsRepository interface {
	Overview(ctx context.Context) (model.StatsOverview, error)
	DepartmentDistribution(ctx context.Context) ([]model.DepartmentStudent, error)
	SectionDistribution(ctx context.Context) ([]model.SectionStudent, error)
}

type pgStatsRepository struct {
	db *sql.DB
}

func NewPgStatsRepository(db *sql.DB) StatsRepository {
	return &pgStatsRepository{db: db}
}

func (r *pgStatsRepository) Overview(ctx context.Context) (model.StatsOverview, error) {
	query := `SELECT
	            (SELECT count(*) FROM students),
	            (SELECT count(*) FROM departments),
	            (SELECT count(*) FROM sections),
	            (SELECT count(*) FROM users),
	            (SELECT count(*) FROM users WHERE role = 'Faculty')`
	var overview model.StatsOverview
	err := r.db.QueryRowContext(ctx, query).Scan(
		&overview.TotalStudents, &overview.TotalDepartments, &overview.TotalSections,
		&overview.TotalUsers, &overview.TotalFaculty,
	)
	if err != nil {
		return model.StatsOverview{}, fmt.Errorf("pgStatsRepository.Overview: %w", err)
	}
	return overview, nil
}

func (r *pgStatsRepository) DepartmentDistribution(ctx context.Context) ([]model.DepartmentStudent, error) {
	query := `SELECT d.id, d.name, d.code, count(s.id)
	          FROM departments d
	          LEFT JOIN students s ON s.department_id = d.id
	          GROUP BY d.id, d.name, d.code
	          ORDER BY d.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.DepartmentDistribution: %w", err)
	}
	defer rows.Close()

	var distribution []model.DepartmentStudent
	for rows.Next() {
		var entry model.DepartmentStudent
		if err := rows.Scan(&entry.DepartmentID, &entry.DepartmentName, &entry.DepartmentCode, &entry.StudentCount); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.DepartmentDistribution scan: %w", err)
		}
		distribution = append(distribution, entry)
	}
	return distribution, rows.Err()
}

func (r *pgStatsRepository) SectionDistribution(ctx context.Context) ([]model.SectionStudent, error) {
	query := `SELECT sec.id, sec.name, d.name, sec.capacity, count(s.id)
	          FROM sections sec
	          JOIN departments d ON d.id = sec.department_id
	          LEFT JOIN students s ON s.section_id = sec.id
	          GROUP BY sec.id, sec.name, d.name, sec.capacity
	          ORDER BY d.name, sec.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgStatsRepository.SectionDistribution: %w", err)
	}
	defer rows.Close()

	var distribution []model.SectionStudent
	for rows.Next() {
		var entry model.SectionStudent
		if err := rows.Scan(&entry.SectionID, &entry.SectionName, &entry.DepartmentName, &entry.Capacity, &entry.StudentCount); err != nil {
			return nil, fmt.Errorf("pgStatsRepository.SectionDistribution scan: %w", err)
		}
		distribution = append(distribution, entry)
	}
	return distribution, rows.Err()
}
