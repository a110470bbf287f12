package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"studentms/internal/common"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"

	"github.com/google/uuid"
)

type StudentService struct {
	studentRepo    repository.StudentRepository
	departmentRepo repository.DepartmentRepository
	sectionRepo    repository.SectionRepository
	statsCache     *StatsCache
}

func NewStudentService(
	studentRepo repository.StudentRepository,
	departmentRepo repository.DepartmentRepository,
	sectionRepo repository.SectionRepository,
	statsCache *StatsCache,
) *StudentService {
	return &StudentService{
		studentRepo:    studentRepo,
		departmentRepo: departmentRepo,
		sectionRepo:    sectionRepo,
		statsCache:     statsCache,
	}
}

type CreateStudentRequest struct {
	Name         string `json:"name"`
	RollNumber   string `json:"roll_number"`
	DepartmentID string `json:"department_id"`
	SectionID    string `json:"section_id"`
	Email        string `json:"email"`
	Contact      string `json:"contact"`
}

type UpdateStudentRequest struct {
	Name         *string `json:"name,omitempty"`
	RollNumber   *string `json:"roll_number,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	SectionID    *string `json:"section_id,omitempty"`
	Email        *string `json:"email,omitempty"`
	Contact      *string `json:"contact,omitempty"`
}

func (s *StudentService) List(ctx context.Context, departmentID, sectionID string, page, limit int) ([]model.Student, common.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	students, total, err := s.studentRepo.List(ctx, repository.ListStudentsFilter{
		DepartmentID: departmentID,
		SectionID:    sectionID,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return nil, common.Pagination{}, err
	}
	return students, common.NewPagination(page, limit, total), nil
}

func (s *StudentService) Get(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(http.StatusNotFound, common.CodeStudentNotFound, "Student not found")
		}
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*model.Student, error) {
	if req.Name == "" || req.RollNumber == "" || req.DepartmentID == "" || req.SectionID == "" || req.Email == "" || req.Contact == "" {
		return nil, common.NewError(http.StatusBadRequest, common.CodeMissingRequiredFields,
			"All fields are required: name, rollNumber, department, section, email, contact")
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, common.NewError(http.StatusBadRequest, common.CodeValidationError, "Please enter a valid email")
	}
	if !contactPattern.MatchString(req.Contact) {
		return nil, common.NewError(http.StatusBadRequest, common.CodeValidationError,
			"Please enter a valid 10-digit contact number")
	}

	if _, err := s.studentRepo.FindByRollNumber(ctx, req.RollNumber); err == nil {
		return nil, common.NewError(http.StatusBadRequest, common.CodeDuplicateRollNumber, "Roll number already exists")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check roll number: %w", err)
	}
	if _, err := s.studentRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, common.NewError(http.StatusBadRequest, common.CodeDuplicateEmail, "Email already exists")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if err := s.checkReferences(ctx, req.DepartmentID, req.SectionID); err != nil {
		return nil, err
	}

	student := &model.Student{
		ID:           uuid.NewString(),
		Name:         req.Name,
		RollNumber:   req.RollNumber,
		DepartmentID: req.DepartmentID,
		SectionID:    req.SectionID,
		Email:        req.Email,
		Contact:      req.Contact,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	s.statsCache.Invalidate()

	return s.studentRepo.FindByID(ctx, student.ID)
}

func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*model.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RollNumber != nil && *req.RollNumber != student.RollNumber {
		if existing, err := s.studentRepo.FindByRollNumber(ctx, *req.RollNumber); err == nil && existing.ID != id {
			return nil, common.NewError(http.StatusBadRequest, common.CodeDuplicateRollNumber, "Roll number already exists")
		} else if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to check roll number: %w", err)
		}
		student.RollNumber = *req.RollNumber
	}
	if req.Email != nil && *req.Email != student.Email {
		if !emailPattern.MatchString(*req.Email) {
			return nil, common.NewError(http.StatusBadRequest, common.CodeValidationError, "Please enter a valid email")
		}
		if existing, err := s.studentRepo.FindByEmail(ctx, *req.Email); err == nil && existing.ID != id {
			return nil, common.NewError(http.StatusBadRequest, common.CodeDuplicateEmail, "Email already exists")
		} else if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		student.Email = *req.Email
	}
	if req.Contact != nil {
		if !contactPattern.MatchString(*req.Contact) {
			return nil, common.NewError(http.StatusBadRequest, common.CodeValidationError,
				"Please enter a valid 10-digit contact number")
		}
		student.Contact = *req.Contact
	}
	if req.Name != nil && *req.Name != "" {
		student.Name = *req.Name
	}

	departmentID := student.DepartmentID
	if req.DepartmentID != nil {
		departmentID = *req.DepartmentID
	}
	sectionID := student.SectionID
	if req.SectionID != nil {
		sectionID = *req.SectionID
	}
	if departmentID != student.DepartmentID || sectionID != student.SectionID {
		if err := s.checkReferences(ctx, departmentID, sectionID); err != nil {
			return nil, err
		}
		student.DepartmentID = departmentID
		student.SectionID = sectionID
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	s.statsCache.Invalidate()

	return s.studentRepo.FindByID(ctx, id)
}

func (s *StudentService) Delete(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.statsCache.Invalidate()
	return student, nil
}

// checkReferences verifies the department exists, the section exists, and the section
// belongs to the department.
func (s *StudentService) checkReferences(ctx context.Context, departmentID, sectionID string) error {
	if _, err := s.departmentRepo.FindByID(ctx, departmentID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(http.StatusBadRequest, common.CodeDepartmentNotFound, "Department not found")
		}
		return fmt.Errorf("failed to check department: %w", err)
	}
	section, err := s.sectionRepo.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(http.StatusBadRequest, common.CodeSectionNotFound, "Section not found")
		}
		return fmt.Errorf("failed to check section: %w", err)
	}
	if section.DepartmentID != departmentID {
		return common.NewError(http.StatusBadRequest, common.CodeSectionDepartmentMismatch,
			"Section does not belong to the specified department")
	}
	return nil
}
