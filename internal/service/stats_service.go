package service

import (
	"context"

	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// StatsService exposes the aggregate overview to roles allowed to see it.
type StatsService struct {
	stats repository.StatsRepository
}

// NewStatsService builds the service.
func NewStatsService(stats repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

// Overview returns the aggregate snapshot. Requesters are not allowed.
func (s *StatsService) Overview(ctx context.Context, viewer *domain.User) (*repository.StatsSnapshot, error) {
	if !viewer.Role.CanViewStats() {
		return nil, apperrors.NewForbidden("stats restricted to staff")
	}
	snapshot, err := s.stats.Snapshot(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return snapshot, nil
}
