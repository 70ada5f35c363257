package dto

import (
	"github.com/helpdesk-br/chamados-service/internal/repository"
)

// DepartmentCountResponse one department slice of the overview.
type DepartmentCountResponse struct {
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Count          int64  `json:"count"`
}

// StatsOverviewResponse aggregate snapshot for the dashboard.
type StatsOverviewResponse struct {
	Total             int64                     `json:"total"`
	ByStatus          map[string]int64          `json:"by_status"`
	ByPriority        map[string]int64          `json:"by_priority"`
	ByDestDepartment  []DepartmentCountResponse `json:"by_dest_department"`
	AvgHoursToClaim   *float64                  `json:"avg_hours_to_claim"`
	AvgHoursToResolve *float64                  `json:"avg_hours_to_resolve"`
}

// NewStatsOverview maps a snapshot.
func NewStatsOverview(s *repository.StatsSnapshot) StatsOverviewResponse {
	resp := StatsOverviewResponse{
		Total:             s.Total,
		ByStatus:          make(map[string]int64, len(s.ByStatus)),
		ByPriority:        make(map[string]int64, len(s.ByPriority)),
		ByDestDepartment:  make([]DepartmentCountResponse, 0, len(s.ByDestDepartment)),
		AvgHoursToClaim:   s.AvgHoursToClaim,
		AvgHoursToResolve: s.AvgHoursToResolve,
	}
	for status, count := range s.ByStatus {
		resp.ByStatus[string(status)] = count
	}
	for priority, count := range s.ByPriority {
		resp.ByPriority[string(priority)] = count
	}
	for _, dc := range s.ByDestDepartment {
		resp.ByDestDepartment = append(resp.ByDestDepartment, DepartmentCountResponse{
			DepartmentID:   dc.DepartmentID,
			DepartmentName: dc.DepartmentName,
			Count:          dc.Count,
		})
	}
	return resp
}
