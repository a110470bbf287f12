package model

import "time"

type Student struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	RollNumber   string      `json:"roll_number"`
	DepartmentID string      `json:"department_id"`
	SectionID    string      `json:"section_id"`
	Email        string      `json:"email"`
	Contact      string      `json:"contact"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Department   *Department `json:"department,omitempty"`
	Section      *Section    `json:"section,omitempty"`
}
