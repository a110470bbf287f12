package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"studentms/internal/common"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"

	"github.com/google/uuid"
)

type DepartmentService struct {
	departmentRepo repository.DepartmentRepository
	sectionRepo    repository.SectionRepository
	studentRepo    repository.StudentRepository
	statsCache     *StatsCache
}

func NewDepartmentService(
	departmentRepo repository.DepartmentRepository,
	sectionRepo repository.SectionRepository,
	studentRepo repository.StudentRepository,
	statsCache *StatsCache,
) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		sectionRepo:    sectionRepo,
		studentRepo:    studentRepo,
		statsCache:     statsCache,
	}
}

type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type UpdateDepartmentRequest struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *DepartmentService) List(ctx context.Context) ([]model.Department, error) {
	return s.departmentRepo.List(ctx)
}

func (s *DepartmentService) Get(ctx context.Context, id string) (*model.Department, error) {
	department, err := s.departmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(http.StatusNotFound, common.CodeNotFound, "Department not found")
		}
		return nil, err
	}
	return department, nil
}

func (s *DepartmentService) Create(ctx context.Context, req CreateDepartmentRequest) (*model.Department, error) {
	if req.Name == "" || req.Code == "" {
		return nil, common.NewError(http.StatusBadRequest, common.CodeValidationError,
			"Department name and code are required")
	}

	if existing, err := s.departmentRepo.FindByNameOrCode(ctx, req.Name, req.Code); err == nil {
		message := "Department with this code already exists"
		if existing.Name == req.Name {
			message = "Department with this name already exists"
		}
		return nil, common.NewError(http.StatusBadRequest, common.CodeDuplicateEntry, message)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check department: %w", err)
	}

	department := &model.Department{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Code:        strings.ToUpper(req.Code),
		Description: req.Description,
	}
	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, err
	}
	s.statsCache.Invalidate()
	return s.Get(ctx, department.ID)
}

func (s *DepartmentService) Update(ctx context.Context, id string, req UpdateDepartmentRequest) (*model.Department, error) {
	department, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := department.Name
	code := department.Code
	if req.Name != nil && *req.Name != "" {
		name = *req.Name
	}
	if req.Code != nil && *req.Code != "" {
		code = strings.ToUpper(*req.Code)
	}
	if name != department.Name || code != department.Code {
		if existing, err := s.departmentRepo.FindByNameOrCode(ctx, name, code); err == nil && existing.ID != id {
			message := "Department with this code already exists"
			if existing.Name == name {
				message = "Department with this name already exists"
			}
			return nil, common.NewError(http.StatusBadRequest, common.CodeDuplicateEntry, message)
		} else if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to check department: %w", err)
		}
	}

	department.Name = name
	department.Code = code
	if req.Description != nil {
		department.Description = *req.Description
	}

	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return nil, err
	}
	s.statsCache.Invalidate()
	return department, nil
}

// Delete refuses while students or sections still reference the department.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	studentCount, err := s.studentRepo.CountByDepartment(ctx, id)
	if err != nil {
		return err
	}
	if studentCount > 0 {
		return common.NewError(http.StatusBadRequest, common.CodeConstraintViolation,
			fmt.Sprintf("Cannot delete department. %d student(s) are associated with this department", studentCount))
	}

	sectionCount, err := s.sectionRepo.CountByDepartment(ctx, id)
	if err != nil {
		return err
	}
	if sectionCount > 0 {
		return common.NewError(http.StatusBadRequest, common.CodeConstraintViolation,
			fmt.Sprintf("Cannot delete department. %d section(s) are associated with this department", sectionCount))
	}

	if err := s.departmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.statsCache.Invalidate()
	return nil
}

func (s *DepartmentService) ListSections(ctx context.Context, departmentID string) ([]model.Section, error) {
	if _, err := s.Get(ctx, departmentID); err != nil {
		return nil, err
	}
	return s.sectionRepo.List(ctx, departmentID)
}
