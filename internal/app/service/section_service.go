package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"studentms/internal/common"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
)

const defaultSectionCapacity = 60

type SectionService struct {
	sectionRepo    repository.SectionRepository
	departmentRepo repository.DepartmentRepository
	studentRepo    repository.StudentRepository
	statsCache     *StatsCache
}

func NewSectionService(
	sectionRepo repository.SectionRepository,
	departmentRepo repository.DepartmentRepository,
	studentRepo repository.StudentRepository,
	statsCache *StatsCache,
) *SectionService {
	return &SectionService{
		sectionRepo:    sectionRepo,
		departmentRepo: departmentRepo,
		studentRepo:    studentRepo,
		statsCache:     statsCache,
	}
}

type CreateSectionRequest struct {
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
	Capacity     int    `json:"capacity"`
}

type UpdateSectionRequest struct {
	Name     *string `json:"name,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
}

func (s *SectionService) List(ctx context.Context, departmentID string) ([]model.Section, error) {
	return s.sectionRepo.List(ctx, departmentID)
}

func (s *SectionService) Get(ctx context.Context, id string) (*model.Section, error) {
	section, err := s.sectionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(http.StatusNotFound, common.CodeNotFound, "Section not found")
		}
		return nil, err
	}
	return section, nil
}

func (s *SectionService) Create(ctx context.Context, req CreateSectionRequest) (*model.Section, error) {
	if req.Name == "" || req.DepartmentID == "" {
		return nil, common.NewError(http.StatusBadRequest, common.CodeValidationError,
			"Section name and department are required")
	}
	if _, err := s.departmentRepo.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(http.StatusNotFound, common.CodeNotFound, "Department not found")
		}
		return nil, fmt.Errorf("failed to check department: %w", err)
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = defaultSectionCapacity
	}
	if capacity < 1 {
		return nil, common.NewError(http.StatusBadRequest, common.CodeValidationError,
			"Capacity must be at least 1")
	}

	section := &model.Section{
		ID:           uuid.NewString(),
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		Capacity:     capacity,
	}
	if err := s.sectionRepo.Create(ctx, section); err != nil {
		return nil, err
	}
	s.statsCache.Invalidate()
	return s.Get(ctx, section.ID)
}

func (s *SectionService) Update(ctx context.Context, id string, req UpdateSectionRequest) (*model.Section, error) {
	section, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != "" {
		section.Name = *req.Name
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, common.NewError(http.StatusBadRequest, common.CodeValidationError,
				"Capacity must be at least 1")
		}
		section.Capacity = *req.Capacity
	}

	if err := s.sectionRepo.Update(ctx, section); err != nil {
		return nil, err
	}
	s.statsCache.Invalidate()
	return s.Get(ctx, id)
}

// Delete refuses while students still reference the section.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	studentCount, err := s.studentRepo.CountBySection(ctx, id)
	if err != nil {
		return err
	}
	if studentCount > 0 {
		return common.NewError(http.StatusBadRequest, common.CodeConstraintViolation,
			fmt.Sprintf("Cannot delete section. %d student(s) are associated with this section", studentCount))
	}
	if err := s.sectionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.statsCache.Invalidate()
	return nil
}
