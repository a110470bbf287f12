package service

import (
	"context"
	"testing"
	"time"

	"studentms/internal/common"
	"studentms/internal/domain/model"
)

type academicFixture struct {
	depts    *fakeDepartmentRepo
	sections *fakeSectionRepo
	students *fakeStudentRepo
	cache    *StatsCache
}

func newAcademicFixture(t *testing.T) *academicFixture {
	t.Helper()
	depts := newFakeDepartmentRepo()
	sections := newFakeSectionRepo()
	students := newFakeStudentRepo(depts, sections)

	ctx := context.Background()
	depts.Create(ctx, &model.Department{ID: "dept-cs", Name: "Computer Science", Code: "CS"})
	depts.Create(ctx, &model.Department{ID: "dept-ec", Name: "Electronics", Code: "EC"})
	sections.Create(ctx, &model.Section{ID: "sec-cs-a", Name: "A", DepartmentID: "dept-cs", Capacity: 60})
	sections.Create(ctx, &model.Section{ID: "sec-ec-a", Name: "A", DepartmentID: "dept-ec", Capacity: 60})

	return &academicFixture{
		depts:    depts,
		sections: sections,
		students: students,
		cache:    NewStatsCache(5 * time.Minute),
	}
}

func validStudentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		Name:         "Alice",
		RollNumber:   "CS001",
		DepartmentID: "dept-cs",
		SectionID:    "sec-cs-a",
		Email:        "alice@example.com",
		Contact:      "9876543210",
	}
}

func TestCreateStudent(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := NewStudentService(fx.students, fx.depts, fx.sections, fx.cache)

	student, err := svc.Create(context.Background(), validStudentRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if student.Department == nil || student.Department.Code != "CS" {
		t.Fatalf("department not populated: %+v", student)
	}
	if student.Section == nil || student.Section.Name != "A" {
		t.Fatalf("section not populated: %+v", student)
	}
}

func TestCreateStudentValidation(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := NewStudentService(fx.students, fx.depts, fx.sections, fx.cache)

	cases := []struct {
		name   string
		mutate func(*CreateStudentRequest)
		code   string
	}{
		{"missing name", func(r *CreateStudentRequest) { r.Name = "" }, common.CodeMissingRequiredFields},
		{"bad email", func(r *CreateStudentRequest) { r.Email = "nope" }, common.CodeValidationError},
		{"bad contact", func(r *CreateStudentRequest) { r.Contact = "12345" }, common.CodeValidationError},
		{"unknown department", func(r *CreateStudentRequest) { r.DepartmentID = "dept-x" }, common.CodeDepartmentNotFound},
		{"unknown section", func(r *CreateStudentRequest) { r.SectionID = "sec-x" }, common.CodeSectionNotFound},
		{"section of another department", func(r *CreateStudentRequest) { r.SectionID = "sec-ec-a" }, common.CodeSectionDepartmentMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validStudentRequest()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := common.CodeFromError(err); got != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, got)
			}
		})
	}
}

func TestCreateStudentDuplicates(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := NewStudentService(fx.students, fx.depts, fx.sections, fx.cache)

	if _, err := svc.Create(context.Background(), validStudentRequest()); err != nil {
		t.Fatalf("seed create: %v", err)
	}

	dupRoll := validStudentRequest()
	dupRoll.Email = "other@example.com"
	if _, err := svc.Create(context.Background(), dupRoll); common.CodeFromError(err) != common.CodeDuplicateRollNumber {
		t.Fatalf("expected DUPLICATE_ROLL_NUMBER, got %v", err)
	}

	dupEmail := validStudentRequest()
	dupEmail.RollNumber = "CS002"
	if _, err := svc.Create(context.Background(), dupEmail); common.CodeFromError(err) != common.CodeDuplicateEmail {
		t.Fatalf("expected DUPLICATE_EMAIL, got %v", err)
	}
}

func TestUpdateStudentMove(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := NewStudentService(fx.students, fx.depts, fx.sections, fx.cache)

	created, err := svc.Create(context.Background(), validStudentRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Moving departments without a matching section must fail.
	dept := "dept-ec"
	if _, err := svc.Update(context.Background(), created.ID, UpdateStudentRequest{DepartmentID: &dept}); common.CodeFromError(err) != common.CodeSectionDepartmentMismatch {
		t.Fatalf("expected SECTION_DEPARTMENT_MISMATCH, got %v", err)
	}

	section := "sec-ec-a"
	moved, err := svc.Update(context.Background(), created.ID, UpdateStudentRequest{
		DepartmentID: &dept,
		SectionID:    &section,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.DepartmentID != "dept-ec" || moved.SectionID != "sec-ec-a" {
		t.Fatalf("move not applied: %+v", moved)
	}
}

func TestStudentMutationsInvalidateStatsCache(t *testing.T) {
	fx := newAcademicFixture(t)
	svc := NewStudentService(fx.students, fx.depts, fx.sections, fx.cache)

	computes := 0
	compute := func(ctx context.Context) (*model.DashboardStats, error) {
		computes++
		return &model.DashboardStats{}, nil
	}
	fx.cache.GetOrCompute(context.Background(), compute)

	created, err := svc.Create(context.Background(), validStudentRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, cached, _ := fx.cache.GetOrCompute(context.Background(), compute); cached {
		t.Fatal("create must invalidate the stats cache")
	}

	if _, err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, cached, _ := fx.cache.GetOrCompute(context.Background(), compute); cached {
		t.Fatal("delete must invalidate the stats cache")
	}
}
