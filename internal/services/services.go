package services

import (
	"log/slog"

	"github.com/vidyarthi-portal/exam-service/internal/cache"
	"github.com/vidyarthi-portal/exam-service/internal/events"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"github.com/vidyarthi-portal/exam-service/internal/storage"
	"github.com/vidyarthi-portal/exam-service/internal/validator"
)

// ServiceManager bundles all services behind one access point so the handler
// layer depends on a single collaborator.
type ServiceManager struct {
	exam       ExamService
	assignment AssignmentService
	sheet      SheetService
	mark       MarkService
	grievance  GrievanceService
	dashboard  DashboardService
	enrollment EnrollmentService
}

func NewServiceManager(
	repo repositories.Repository,
	store storage.ObjectStore,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) *ServiceManager {
	markService := NewMarkService(repo, publisher, logger, v)

	return &ServiceManager{
		exam:       NewExamService(repo, store, logger, v),
		assignment: NewAssignmentService(repo, publisher, logger, v),
		sheet:      NewSheetService(repo, store, markService, publisher, logger, v),
		mark:       markService,
		grievance:  NewGrievanceService(repo, markService, publisher, logger, v),
		dashboard:  NewDashboardService(repo, cacheService, logger),
		enrollment: NewEnrollmentService(repo, publisher, logger, v),
	}
}

func (m *ServiceManager) Exam() ExamService             { return m.exam }
func (m *ServiceManager) Assignment() AssignmentService { return m.assignment }
func (m *ServiceManager) Sheet() SheetService           { return m.sheet }
func (m *ServiceManager) Mark() MarkService             { return m.mark }
func (m *ServiceManager) Grievance() GrievanceService   { return m.grievance }
func (m *ServiceManager) Dashboard() DashboardService   { return m.dashboard }
func (m *ServiceManager) Enrollment() EnrollmentService { return m.enrollment }
