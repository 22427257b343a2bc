package repositories

import (
	"context"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// GrievanceRepository interface for grievance operations
type GrievanceRepository interface {
	Create(ctx context.Context, grievance *models.Grievance) error
	GetByID(ctx context.Context, id uint) (*models.Grievance, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Grievance, error) // student, sheet, reviewer

	List(ctx context.Context, filters GrievanceFilters) ([]*models.Grievance, int64, error)

	// HasOpenGrievance reports whether a non-terminal grievance exists for the
	// same (sheet, question, sub-question) triple.
	HasOpenGrievance(ctx context.Context, sheetID uint, questionNumber int, subQuestion *string) (bool, error)

	// UpdateWithVersion applies the update only if the stored row still has
	// the expected version, bumping it by one. Returns the store's
	// record-not-found error when the version no longer matches, so a terminal
	// transition can never be applied twice.
	UpdateWithVersion(ctx context.Context, grievance *models.Grievance, expectedVersion int) error

	GetStats(ctx context.Context, filters GrievanceFilters) (*GrievanceStats, error)
}

// UserRepository interface for the identity mirror table
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error)
}
