package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gosimple/slug"

	"studentms/internal/common"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
)

type ReportService struct {
	studentRepo    repository.StudentRepository
	departmentRepo repository.DepartmentRepository
	sectionRepo    repository.SectionRepository
	now            func() time.Time
}

func NewReportService(
	studentRepo repository.StudentRepository,
	departmentRepo repository.DepartmentRepository,
	sectionRepo repository.SectionRepository,
) *ReportService {
	return &ReportService{
		studentRepo:    studentRepo,
		departmentRepo: departmentRepo,
		sectionRepo:    sectionRepo,
		now:            time.Now,
	}
}

type ReportRequest struct {
	DepartmentID string `json:"department_id"`
	SectionID    string `json:"section_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

type ReportSummary struct {
	TotalStudents  int    `json:"total_students"`
	DepartmentName string `json:"department_name,omitempty"`
	SectionName    string `json:"section_name,omitempty"`
	GeneratedAt    string `json:"generated_at"`
}

type Report struct {
	Summary  ReportSummary   `json:"summary"`
	Students []model.Student `json:"students"`
}

// CSVExport is a rendered CSV document with a suggested download filename.
type CSVExport struct {
	Filename string
	Content  []byte
}

func parseReportDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, common.NewError(http.StatusBadRequest, common.CodeInvalidDateRange, fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", value))
	}
	return &t, nil
}

func (s *ReportService) buildFilter(req ReportRequest) (repository.ReportFilter, error) {
	start, err := parseReportDate(req.StartDate)
	if err != nil {
		return repository.ReportFilter{}, err
	}
	end, err := parseReportDate(req.EndDate)
	if err != nil {
		return repository.ReportFilter{}, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return repository.ReportFilter{}, common.NewError(http.StatusBadRequest, common.CodeInvalidDateRange, "End date must not be before start date")
	}
	if end != nil {
		// Make the end date inclusive of the whole day.
		e := end.Add(24*time.Hour - time.Nanosecond)
		end = &e
	}
	return repository.ReportFilter{
		DepartmentID: req.DepartmentID,
		SectionID:    req.SectionID,
		StartDate:    start,
		EndDate:      end,
	}, nil
}

// DepartmentReport lists the students of one department, optionally
// restricted to a created-at date range.
func (s *ReportService) DepartmentReport(ctx context.Context, req ReportRequest) (*Report, error) {
	if req.DepartmentID == "" {
		return nil, common.NewError(http.StatusBadRequest, common.CodeMissingRequiredFields, "Department id is required")
	}
	dept, err := s.departmentRepo.FindByID(ctx, req.DepartmentID)
	if err != nil {
		if common.HTTPStatusFromError(err) == http.StatusNotFound {
			return nil, common.NewError(http.StatusNotFound, common.CodeDepartmentNotFound, "Department not found")
		}
		return nil, err
	}
	filter, err := s.buildFilter(req)
	if err != nil {
		return nil, err
	}
	filter.SectionID = ""
	students, err := s.studentRepo.ListForReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &Report{
		Summary: ReportSummary{
			TotalStudents:  len(students),
			DepartmentName: dept.Name,
			GeneratedAt:    s.now().UTC().Format(time.RFC3339),
		},
		Students: students,
	}, nil
}

// SectionReport lists the students of one section.
func (s *ReportService) SectionReport(ctx context.Context, req ReportRequest) (*Report, error) {
	if req.SectionID == "" {
		return nil, common.NewError(http.StatusBadRequest, common.CodeMissingRequiredFields, "Section id is required")
	}
	section, err := s.sectionRepo.FindByID(ctx, req.SectionID)
	if err != nil {
		if common.HTTPStatusFromError(err) == http.StatusNotFound {
			return nil, common.NewError(http.StatusNotFound, common.CodeSectionNotFound, "Section not found")
		}
		return nil, err
	}
	filter, err := s.buildFilter(req)
	if err != nil {
		return nil, err
	}
	filter.DepartmentID = ""
	filter.SectionID = section.ID
	students, err := s.studentRepo.ListForReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary := ReportSummary{
		TotalStudents: len(students),
		SectionName:   section.Name,
		GeneratedAt:   s.now().UTC().Format(time.RFC3339),
	}
	if section.Department != nil {
		summary.DepartmentName = section.Department.Name
	}
	return &Report{Summary: summary, Students: students}, nil
}

// CompleteReport lists every student, optionally restricted to a
// created-at date range and/or a department.
func (s *ReportService) CompleteReport(ctx context.Context, req ReportRequest) (*Report, error) {
	filter, err := s.buildFilter(req)
	if err != nil {
		return nil, err
	}
	summary := ReportSummary{GeneratedAt: s.now().UTC().Format(time.RFC3339)}
	if req.DepartmentID != "" {
		dept, err := s.departmentRepo.FindByID(ctx, req.DepartmentID)
		if err != nil {
			if common.HTTPStatusFromError(err) == http.StatusNotFound {
				return nil, common.NewError(http.StatusNotFound, common.CodeDepartmentNotFound, "Department not found")
			}
			return nil, err
		}
		summary.DepartmentName = dept.Name
	}
	students, err := s.studentRepo.ListForReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary.TotalStudents = len(students)
	return &Report{Summary: summary, Students: students}, nil
}

// ExportCSV renders a report request as a CSV attachment.
func (s *ReportService) ExportCSV(ctx context.Context, req ReportRequest) (*CSVExport, error) {
	report, err := s.CompleteReport(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"Roll Number", "Name", "Email", "Contact", "Department", "Section", "Enrolled At"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("ExportCSV: write header: %w", err)
	}
	for _, st := range report.Students {
		deptName, sectionName := "", ""
		if st.Department != nil {
			deptName = st.Department.Name
		}
		if st.Section != nil {
			sectionName = st.Section.Name
		}
		record := []string{
			st.RollNumber,
			st.Name,
			st.Email,
			st.Contact,
			deptName,
			sectionName,
			st.CreatedAt.UTC().Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("ExportCSV: write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("ExportCSV: flush: %w", err)
	}

	scope := "all-departments"
	if report.Summary.DepartmentName != "" {
		scope = slug.Make(report.Summary.DepartmentName)
	}
	filename := fmt.Sprintf("students-%s-%s.csv", scope, s.now().UTC().Format("20060102-150405"))
	return &CSVExport{Filename: filename, Content: buf.Bytes()}, nil
}
