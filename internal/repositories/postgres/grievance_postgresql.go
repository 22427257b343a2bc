package postgres

import (
	"context"

	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GrievancePostgreSQL struct {
	db *gorm.DB
}

func NewGrievancePostgreSQL(db *gorm.DB) repositories.GrievanceRepository {
	return &GrievancePostgreSQL{db: db}
}

func (g *GrievancePostgreSQL) Create(ctx context.Context, grievance *models.Grievance) error {
	return g.db.WithContext(ctx).Create(grievance).Error
}

func (g *GrievancePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Grievance, error) {
	var grievance models.Grievance
	if err := g.db.WithContext(ctx).First(&grievance, id).Error; err != nil {
		return nil, err
	}
	return &grievance, nil
}

func (g *GrievancePostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.Grievance, error) {
	var grievance models.Grievance
	if err := g.db.WithContext(ctx).
		Preload("Student").
		Preload("Reviewer").
		Preload("AnswerSheet").
		Preload("AnswerSheet.Exam").
		Preload("AnswerSheet.Exam.Subject").
		First(&grievance, id).Error; err != nil {
		return nil, err
	}
	return &grievance, nil
}

func (g *GrievancePostgreSQL) List(ctx context.Context, filters repositories.GrievanceFilters) ([]*models.Grievance, int64, error) {
	var grievances []*models.Grievance
	var total int64

	query := g.db.WithContext(ctx).Model(&models.Grievance{})
	query = g.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = g.applyPaginationAndSort(query, filters)

	if err := query.
		Preload("Student").
		Preload("Reviewer").
		Preload("AnswerSheet").
		Preload("AnswerSheet.Exam").
		Find(&grievances).Error; err != nil {
		return nil, 0, err
	}

	return grievances, total, nil
}

func (g *GrievancePostgreSQL) HasOpenGrievance(ctx context.Context, sheetID uint, questionNumber int, subQuestion *string) (bool, error) {
	query := g.db.WithContext(ctx).
		Model(&models.Grievance{}).
		Where("answer_sheet_id = ? AND question_number = ?", sheetID, questionNumber).
		Where("status IN ?", []models.GrievanceStatus{models.GrievancePending, models.GrievanceUnderReview})
	if subQuestion != nil {
		query = query.Where("sub_question_number = ?", *subQuestion)
	} else {
		query = query.Where("sub_question_number IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateWithVersion is the optimistic check that serializes concurrent
// transitions: the write only lands if the row still carries expectedVersion.
func (g *GrievancePostgreSQL) UpdateWithVersion(ctx context.Context, grievance *models.Grievance, expectedVersion int) error {
	grievance.Version = expectedVersion + 1
	result := g.db.WithContext(ctx).
		Model(&models.Grievance{}).
		Where("id = ? AND version = ?", grievance.ID, expectedVersion).
		Select("status", "reviewer_id", "teacher_response", "updated_marks", "reviewed_at", "version", "updated_at").
		Updates(grievance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (g *GrievancePostgreSQL) GetStats(ctx context.Context, filters repositories.GrievanceFilters) (*repositories.GrievanceStats, error) {
	stats := &repositories.GrievanceStats{
		StatusBreakdown: make(map[models.GrievanceStatus]int64),
	}

	base := g.applyFilters(g.db.WithContext(ctx).Model(&models.Grievance{}), filters)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalGrievances).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status models.GrievanceStatus
		Count  int64
	}
	if err := base.Session(&gorm.Session{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.StatusBreakdown[row.Status] = row.Count
	}

	var avg *float64
	if err := base.Session(&gorm.Session{}).
		Where("status = ? AND updated_marks IS NOT NULL", models.GrievanceResolved).
		Select("AVG(updated_marks - current_marks)").
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AverageRevision = *avg
	}

	return stats, nil
}

func (g *GrievancePostgreSQL) applyFilters(query *gorm.DB, filters repositories.GrievanceFilters) *gorm.DB {
	if filters.StudentID != nil {
		query = query.Where("grievances.student_id = ?", *filters.StudentID)
	}
	if filters.AnswerSheetID != nil {
		query = query.Where("grievances.answer_sheet_id = ?", *filters.AnswerSheetID)
	}
	if len(filters.SheetIDs) > 0 {
		query = query.Where("grievances.answer_sheet_id IN ?", filters.SheetIDs)
	}
	if len(filters.ExamIDs) > 0 {
		query = query.Joins("JOIN answer_sheets ON answer_sheets.id = grievances.answer_sheet_id").
			Where("answer_sheets.exam_id IN ?", filters.ExamIDs)
	}
	if filters.Status != nil {
		query = query.Where("grievances.status = ?", *filters.Status)
	}
	if filters.TeacherID != nil {
		query = query.Where("grievances.teacher_id = ?", *filters.TeacherID)
	}
	if filters.DateFrom != nil {
		query = query.Where("grievances.submission_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("grievances.submission_date <= ?", *filters.DateTo)
	}
	return query
}

func (g *GrievancePostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.GrievanceFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "submission_date", "reviewed_at", "status":
	default:
		sortBy = "submission_date"
	}
	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	query = query.Order("grievances." + sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

// Upsert refreshes the identity mirror row from the provider's claims.
func (u *UserPostgreSQL) Upsert(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "email", "role", "department", "last_login_at", "updated_at",
		}),
	}).Create(user).Error
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	var users []*models.User
	if err := u.db.WithContext(ctx).
		Where("role = ?", role).
		Order("full_name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
