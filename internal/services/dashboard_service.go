package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidyarthi-portal/exam-service/internal/cache"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
)

// DashboardService serves the aggregate views backing the portal landing
// pages. Results are cached in Redis with a short TTL; every query is scoped
// by the caller's role.
type DashboardService interface {
	// PendingPapersFor lists ungraded sheets on exams the teacher is assigned to.
	PendingPapersFor(ctx context.Context, teacherID string) ([]*models.AnswerSheet, int64, error)

	// GrievancesFor lists grievances on exams the teacher is assigned to,
	// optionally restricted to one status.
	GrievancesFor(ctx context.Context, teacherID string, status *models.GrievanceStatus) ([]*models.Grievance, int64, error)

	// StudentSummary lists a student's own sheets and grievances.
	StudentSummary(ctx context.Context, studentID string) (*StudentSummary, error)

	// DepartmentBreakdown counts answer sheets per department.
	DepartmentBreakdown(ctx context.Context) ([]repositories.DepartmentCount, error)

	// Overview aggregates portal-wide statistics for admin and controller views.
	Overview(ctx context.Context) (*repositories.OverviewStats, error)
}

type StudentSummary struct {
	Sheets     []*models.AnswerSheet `json:"sheets"`
	Grievances []*models.Grievance   `json:"grievances"`
}

const (
	overviewCacheKey      = "dashboard:overview"
	departmentCacheKey    = "dashboard:departments"
	dashboardCacheTTL     = 2 * time.Minute
	dashboardListPageSize = 100
)

type dashboardService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func (s *dashboardService) PendingPapersFor(ctx context.Context, teacherID string) ([]*models.AnswerSheet, int64, error) {
	examIDs, err := s.repo.Assignment().ExamIDsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load teacher exams: %w", err)
	}
	if len(examIDs) == 0 {
		return []*models.AnswerSheet{}, 0, nil
	}

	pending := models.GradingPending
	sheets, total, err := s.repo.Sheet().List(ctx, repositories.SheetFilters{
		ExamIDs:       examIDs,
		GradingStatus: &pending,
		Limit:         dashboardListPageSize,
		SortBy:        "upload_date",
		SortOrder:     "asc",
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending sheets: %w", err)
	}
	return sheets, total, nil
}

func (s *dashboardService) GrievancesFor(ctx context.Context, teacherID string, status *models.GrievanceStatus) ([]*models.Grievance, int64, error) {
	examIDs, err := s.repo.Assignment().ExamIDsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load teacher exams: %w", err)
	}
	if len(examIDs) == 0 {
		return []*models.Grievance{}, 0, nil
	}

	// Scoped by the exam assignment set, not the routed teacher, so
	// co-graders on the same exam see each other's grievances.
	grievances, total, err := s.repo.Grievance().List(ctx, repositories.GrievanceFilters{
		ExamIDs:   examIDs,
		Status:    status,
		Limit:     dashboardListPageSize,
		SortBy:    "submission_date",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list grievances: %w", err)
	}
	return grievances, total, nil
}

func (s *dashboardService) StudentSummary(ctx context.Context, studentID string) (*StudentSummary, error) {
	sheets, _, err := s.repo.Sheet().List(ctx, repositories.SheetFilters{
		StudentID: &studentID,
		Limit:     dashboardListPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}

	grievances, _, err := s.repo.Grievance().List(ctx, repositories.GrievanceFilters{
		StudentID: &studentID,
		Limit:     dashboardListPageSize,
		SortBy:    "submission_date",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list grievances: %w", err)
	}

	return &StudentSummary{Sheets: sheets, Grievances: grievances}, nil
}

func (s *dashboardService) DepartmentBreakdown(ctx context.Context) ([]repositories.DepartmentCount, error) {
	var cached []repositories.DepartmentCount
	if err := s.cache.Get(ctx, departmentCacheKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Dashboard cache read failed", "key", departmentCacheKey, "error", err)
	}

	counts, err := s.repo.Sheet().CountByDepartment(ctx, repositories.SheetFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to count by department: %w", err)
	}

	if err := s.cache.Set(ctx, departmentCacheKey, counts, dashboardCacheTTL); err != nil {
		s.logger.Warn("Dashboard cache write failed", "key", departmentCacheKey, "error", err)
	}
	return counts, nil
}

func (s *dashboardService) Overview(ctx context.Context) (*repositories.OverviewStats, error) {
	var cached repositories.OverviewStats
	if err := s.cache.Get(ctx, overviewCacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Dashboard cache read failed", "key", overviewCacheKey, "error", err)
	}

	examCount, err := s.repo.Exam().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count exams: %w", err)
	}

	sheetStats, err := s.repo.Sheet().GetStats(ctx, repositories.SheetFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet stats: %w", err)
	}

	grievanceStats, err := s.repo.Grievance().GetStats(ctx, repositories.GrievanceFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get grievance stats: %w", err)
	}

	byDepartment, err := s.repo.Sheet().CountByDepartment(ctx, repositories.SheetFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to count by department: %w", err)
	}

	openGrievances := grievanceStats.StatusBreakdown[models.GrievancePending] +
		grievanceStats.StatusBreakdown[models.GrievanceUnderReview]

	stats := &repositories.OverviewStats{
		Exams:          examCount,
		AnswerSheets:   sheetStats.TotalSheets,
		PendingSheets:  sheetStats.PendingSheets,
		OpenGrievances: openGrievances,
		Sheets:         *sheetStats,
		Grievances:     *grievanceStats,
		ByDepartment:   byDepartment,
	}

	if err := s.cache.Set(ctx, overviewCacheKey, stats, dashboardCacheTTL); err != nil {
		s.logger.Warn("Dashboard cache write failed", "key", overviewCacheKey, "error", err)
	}
	return stats, nil
}
