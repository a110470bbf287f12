package service

import (
	"context"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
)

type StatsService struct {
	statsRepo repository.StatsRepository
	cache     *StatsCache
}

func NewStatsService(statsRepo repository.StatsRepository, cache *StatsCache) *StatsService {
	return &StatsService{statsRepo: statsRepo, cache: cache}
}

func (s *StatsService) GetDashboardStats(ctx context.Context) (*model.DashboardStats, bool, error) {
	return s.cache.GetOrCompute(ctx, s.compute)
}

func (s *StatsService) compute(ctx context.Context) (*model.DashboardStats, error) {
	overview, err := s.statsRepo.Overview(ctx)
	if err != nil {
		return nil, err
	}
	departmentDistribution, err := s.statsRepo.DepartmentDistribution(ctx)
	if err != nil {
		return nil, err
	}
	sectionDistribution, err := s.statsRepo.SectionDistribution(ctx)
	if err != nil {
		return nil, err
	}
	return &model.DashboardStats{
		Overview:               overview,
		DepartmentDistribution: departmentDistribution,
		SectionDistribution:    sectionDistribution,
	}, nil
}
