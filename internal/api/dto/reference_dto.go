package dto

import "github.com/helpdesk-br/chamados-service/internal/domain"

// DepartmentResponse reference data.
type DepartmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BranchResponse reference data.
type BranchResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

// NewDepartmentResponses maps the department list.
func NewDepartmentResponses(departments []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		out = append(out, DepartmentResponse{ID: d.ID, Name: d.Name})
	}
	return out
}

// NewBranchResponses maps the branch list.
func NewBranchResponses(branches []domain.Branch) []BranchResponse {
	out := make([]BranchResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, BranchResponse{ID: b.ID, Name: b.Name, Address: b.Address})
	}
	return out
}
