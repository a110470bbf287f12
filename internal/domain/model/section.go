package model

import "time"

type Section struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	DepartmentID    string      `json:"department_id"`
	Capacity        int         `json:"capacity"`
	CurrentStrength int         `json:"current_strength"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Department      *Department `json:"department,omitempty"`
}
