package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyarthi-portal/exam-service/internal/cache"
	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// fakeCache stores JSON-encoded values, matching the Redis-backed behavior.
type fakeCache struct {
	data map[string][]byte
	sets int
	hits int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = data
	f.sets++
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := f.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	f.hits++
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	f.data = map[string][]byte{}
	return nil
}

func (e *testEnv) dashboards(c cache.CacheService) DashboardService {
	return NewDashboardService(e.repo, c, e.logger)
}

func TestPendingPapersFor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	exam, _ := env.seedGradedSheet(t)
	svc := env.dashboards(newFakeCache())

	t.Run("empty when the teacher has no assignments", func(t *testing.T) {
		sheets, total, err := svc.PendingPapersFor(ctx, "t9")
		require.NoError(t, err)
		assert.Empty(t, sheets)
		assert.Zero(t, total)
	})

	t.Run("lists only ungraded sheets on assigned exams", func(t *testing.T) {
		env.seedUser(t, "s3", models.RoleStudent)
		require.NoError(t, env.repo.Enrollment().Create(ctx, &models.ExamEnrollment{
			ExamID: exam.ID, StudentID: "s3",
		}))
		pendingSheet := &models.AnswerSheet{
			StudentID:     "s3",
			ExamID:        exam.ID,
			FileKey:       "sheets/s3.pdf",
			TotalMarks:    exam.TotalMarks,
			GradingStatus: models.GradingPending,
		}
		require.NoError(t, env.repo.Sheet().Create(ctx, pendingSheet))

		sheets, total, err := svc.PendingPapersFor(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, sheets, 1)
		assert.Equal(t, "s3", sheets[0].StudentID)
	})
}

func TestGrievancesFor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	exam, sheet := env.seedGradedSheet(t)
	svc := env.dashboards(newFakeCache())

	grievanceSvc := env.grievances()
	_, err := grievanceSvc.Submit(ctx, &SubmitGrievanceRequest{
		AnswerSheetID:  sheet.ID,
		QuestionNumber: 1,
		GrievanceText:  "partial credit for the second step was not awarded",
	}, "s1")
	require.NoError(t, err)

	t.Run("lists grievances on the teacher's assigned exams", func(t *testing.T) {
		grievances, total, err := svc.GrievancesFor(ctx, "t1", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, grievances, 1)
		assert.Equal(t, models.GrievancePending, grievances[0].Status)
	})

	t.Run("co-teacher on the same exam sees grievances routed to another grader", func(t *testing.T) {
		env.seedUser(t, "t2", models.RoleTeacher)
		_, err := env.assignments().Assign(ctx, &AssignRequest{
			ExamID:           exam.ID,
			TeacherID:        "t2",
			Questions:        []int{4, 5},
			MarksPerQuestion: map[int]float64{4: 5, 5: 5},
		}, "controller-1")
		require.NoError(t, err)

		// The grievance targets question 1, routed to t1. Visibility is
		// keyed on the exam assignment set, so t2 sees it too.
		grievances, total, err := svc.GrievancesFor(ctx, "t2", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, grievances, 1)
		assert.Equal(t, "t1", grievances[0].TeacherID)
	})

	t.Run("teacher without assignments sees nothing", func(t *testing.T) {
		grievances, total, err := svc.GrievancesFor(ctx, "t9", nil)
		require.NoError(t, err)
		assert.Empty(t, grievances)
		assert.Zero(t, total)
	})

	t.Run("status filter excludes non-matching grievances", func(t *testing.T) {
		resolved := models.GrievanceResolved
		grievances, total, err := svc.GrievancesFor(ctx, "t1", &resolved)
		require.NoError(t, err)
		assert.Empty(t, grievances)
		assert.Zero(t, total)
	})
}

func TestStudentSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, sheet := env.seedGradedSheet(t)
	svc := env.dashboards(newFakeCache())

	_, err := env.grievances().Submit(ctx, &SubmitGrievanceRequest{
		AnswerSheetID:  sheet.ID,
		QuestionNumber: 2,
		GrievanceText:  "question two was marked against the wrong answer key",
	}, "s1")
	require.NoError(t, err)

	summary, err := svc.StudentSummary(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, summary.Sheets, 1)
	assert.Len(t, summary.Grievances, 1)

	other, err := svc.StudentSummary(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, other.Sheets)
	assert.Empty(t, other.Grievances)
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, sheet := env.seedGradedSheet(t)
	c := newFakeCache()
	svc := env.dashboards(c)

	_, err := env.grievances().Submit(ctx, &SubmitGrievanceRequest{
		AnswerSheetID:  sheet.ID,
		QuestionNumber: 3,
		GrievanceText:  "total on the cover page does not match the inner pages",
	}, "s1")
	require.NoError(t, err)

	stats, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Exams)
	assert.Equal(t, int64(1), stats.AnswerSheets)
	assert.Zero(t, stats.PendingSheets)
	assert.Equal(t, int64(1), stats.OpenGrievances)
	assert.Equal(t, 21.0, stats.Sheets.AverageMarks)
	assert.Equal(t, 1, c.sets)

	// The second read is served from the cache
	again, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Exams, again.Exams)
	assert.Equal(t, 1, c.hits)
	assert.Equal(t, 1, c.sets)
}
