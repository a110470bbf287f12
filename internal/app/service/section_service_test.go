package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"studentms/internal/common"
)

func newSectionService(fx *academicFixture) *SectionService {
	return NewSectionService(fx.sections, fx.depts, fx.students, fx.cache)
}

func TestCreateSectionDefaultCapacity(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := newSectionService(fx)

	section, err := svc.Create(context.Background(), CreateSectionRequest{
		Name:         "B",
		DepartmentID: "dept-cs",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if section.Capacity != 60 {
		t.Fatalf("expected default capacity 60, got %d", section.Capacity)
	}
}

func TestCreateSectionValidation(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := newSectionService(fx)

	cases := []struct {
		name   string
		req    CreateSectionRequest
		status int
		code   string
	}{
		{"missing name", CreateSectionRequest{DepartmentID: "dept-cs"}, http.StatusBadRequest, common.CodeValidationError},
		{"missing department", CreateSectionRequest{Name: "B"}, http.StatusBadRequest, common.CodeValidationError},
		{"unknown department", CreateSectionRequest{Name: "B", DepartmentID: "dept-nope"}, http.StatusNotFound, common.CodeNotFound},
		{"negative capacity", CreateSectionRequest{Name: "B", DepartmentID: "dept-cs", Capacity: -5}, http.StatusBadRequest, common.CodeValidationError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := common.HTTPStatusFromError(err); got != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, got)
			}
			if got := common.CodeFromError(err); got != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, got)
			}
		})
	}
}

func TestUpdateSectionCapacity(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := newSectionService(fx)

	capacity := 80
	section, err := svc.Update(context.Background(), "sec-cs-a", UpdateSectionRequest{Capacity: &capacity})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if section.Capacity != 80 {
		t.Fatalf("expected capacity 80, got %d", section.Capacity)
	}
	if section.Name != "A" {
		t.Fatalf("name should be untouched, got %q", section.Name)
	}

	bad := 0
	if _, err := svc.Update(context.Background(), "sec-cs-a", UpdateSectionRequest{Capacity: &bad}); common.CodeFromError(err) != common.CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR for zero capacity, got %v", err)
	}
}

func TestDeleteSectionGuardedByStudents(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := newSectionService(fx)
	studentSvc := NewStudentService(fx.students, fx.depts, fx.sections, fx.cache)

	if _, err := studentSvc.Create(context.Background(), validStudentRequest()); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	err := svc.Delete(context.Background(), "sec-cs-a")
	if common.CodeFromError(err) != common.CodeConstraintViolation || !strings.Contains(err.Error(), "student") {
		t.Fatalf("expected constraint violation, got %v", err)
	}

	if err := svc.Delete(context.Background(), "sec-ec-a"); err != nil {
		t.Fatalf("delete empty section: %v", err)
	}
	if _, err := svc.Get(context.Background(), "sec-ec-a"); common.HTTPStatusFromError(err) != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %v", err)
	}
}

func TestListSectionsByDepartment(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := newSectionService(fx)

	sections, err := svc.List(context.Background(), "dept-cs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sections) != 1 || sections[0].ID != "sec-cs-a" {
		t.Fatalf("expected only the CS section, got %+v", sections)
	}
}
