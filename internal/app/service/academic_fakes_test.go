package service

import (
	"context"
	"strings"

	"studentms/internal/common"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
)

type fakeDepartmentRepo struct {
	departments map[string]*model.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{departments: make(map[string]*model.Department)}
}

func (f *fakeDepartmentRepo) Create(ctx context.Context, department *model.Department) error {
	clone := *department
	f.departments[department.ID] = &clone
	return nil
}

func (f *fakeDepartmentRepo) FindByID(ctx context.Context, id string) (*model.Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (f *fakeDepartmentRepo) FindByNameOrCode(ctx context.Context, name, code string) (*model.Department, error) {
	for _, d := range f.departments {
		if d.Name == name || strings.EqualFold(d.Code, code) {
			clone := *d
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeDepartmentRepo) List(ctx context.Context) ([]model.Department, error) {
	var out []model.Department
	for _, d := range f.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDepartmentRepo) Update(ctx context.Context, department *model.Department) error {
	if _, ok := f.departments[department.ID]; !ok {
		return common.ErrNotFound
	}
	clone := *department
	f.departments[department.ID] = &clone
	return nil
}

func (f *fakeDepartmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.departments[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.departments, id)
	return nil
}

type fakeSectionRepo struct {
	sections map[string]*model.Section
}

func newFakeSectionRepo() *fakeSectionRepo {
	return &fakeSectionRepo{sections: make(map[string]*model.Section)}
}

func (f *fakeSectionRepo) Create(ctx context.Context, section *model.Section) error {
	clone := *section
	f.sections[section.ID] = &clone
	return nil
}

func (f *fakeSectionRepo) FindByID(ctx context.Context, id string) (*model.Section, error) {
	s, ok := f.sections[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSectionRepo) List(ctx context.Context, departmentID string) ([]model.Section, error) {
	var out []model.Section
	for _, s := range f.sections {
		if departmentID != "" && s.DepartmentID != departmentID {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSectionRepo) Update(ctx context.Context, section *model.Section) error {
	if _, ok := f.sections[section.ID]; !ok {
		return common.ErrNotFound
	}
	clone := *section
	f.sections[section.ID] = &clone
	return nil
}

func (f *fakeSectionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.sections[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.sections, id)
	return nil
}

func (f *fakeSectionRepo) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	count := 0
	for _, s := range f.sections {
		if s.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

type fakeStudentRepo struct {
	students map[string]*model.Student
	depts    *fakeDepartmentRepo
	sections *fakeSectionRepo
}

func newFakeStudentRepo(depts *fakeDepartmentRepo, sections *fakeSectionRepo) *fakeStudentRepo {
	return &fakeStudentRepo{
		students: make(map[string]*model.Student),
		depts:    depts,
		sections: sections,
	}
}

// populate mirrors the join the real queries do.
func (f *fakeStudentRepo) populate(s model.Student) model.Student {
	if f.depts != nil {
		if d, err := f.depts.FindByID(context.Background(), s.DepartmentID); err == nil {
			s.Department = d
		}
	}
	if f.sections != nil {
		if sec, err := f.sections.FindByID(context.Background(), s.SectionID); err == nil {
			s.Section = sec
		}
	}
	return s
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *model.Student) error {
	clone := *student
	f.students[student.ID] = &clone
	return nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*model.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	populated := f.populate(*s)
	return &populated, nil
}

func (f *fakeStudentRepo) FindByRollNumber(ctx context.Context, rollNumber string) (*model.Student, error) {
	for _, s := range f.students {
		if strings.EqualFold(s.RollNumber, rollNumber) {
			populated := f.populate(*s)
			return &populated, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeStudentRepo) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	for _, s := range f.students {
		if strings.EqualFold(s.Email, email) {
			populated := f.populate(*s)
			return &populated, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeStudentRepo) List(ctx context.Context, filter repository.ListStudentsFilter) ([]model.Student, int, error) {
	var out []model.Student
	for _, s := range f.students {
		if filter.DepartmentID != "" && s.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.SectionID != "" && s.SectionID != filter.SectionID {
			continue
		}
		out = append(out, f.populate(*s))
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) ListForReport(ctx context.Context, filter repository.ReportFilter) ([]model.Student, error) {
	var out []model.Student
	for _, s := range f.students {
		if filter.DepartmentID != "" && s.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.SectionID != "" && s.SectionID != filter.SectionID {
			continue
		}
		if filter.StartDate != nil && s.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && s.CreatedAt.After(*filter.EndDate) {
			continue
		}
		out = append(out, f.populate(*s))
	}
	return out, nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *model.Student) error {
	if _, ok := f.students[student.ID]; !ok {
		return common.ErrNotFound
	}
	clone := *student
	clone.Department = nil
	clone.Section = nil
	f.students[student.ID] = &clone
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.students[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	count := 0
	for _, s := range f.students {
		if s.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStudentRepo) CountBySection(ctx context.Context, sectionID string) (int, error) {
	count := 0
	for _, s := range f.students {
		if s.SectionID == sectionID {
			count++
		}
	}
	return count, nil
}
