package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
)

// fakeRepo is an in-memory Repository with real transaction semantics: Begin
// clones the stores, Commit copies them back, Rollback discards them. Error
// fields inject faults on specific operations.
type fakeRepo struct {
	parent *fakeRepo

	departments map[uint]*models.Department
	subjects    map[uint]*models.Subject
	exams       map[uint]*models.Exam
	enrollments map[string]*models.ExamEnrollment        // examID|studentID
	assignments map[string]*models.ExamTeacherAssignment // examID|teacherID
	sheets      map[uint]*models.AnswerSheet
	marks       map[string]*models.QuestionMark // sheetID|question
	annotations []*models.Annotation
	grievances  map[uint]*models.Grievance
	users       map[string]*models.User

	nextID uint

	markUpsertErr  error
	markUpdateErr  error
	sheetCreateErr error
	sheetUpdateErr error
	commitErr      error

	// beforeGrievanceUpdate runs just before the version check, letting tests
	// interleave a competing writer.
	beforeGrievanceUpdate func(r *fakeRepo)

	rolledBack bool
	committed  bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		departments: map[uint]*models.Department{},
		subjects:    map[uint]*models.Subject{},
		exams:       map[uint]*models.Exam{},
		enrollments: map[string]*models.ExamEnrollment{},
		assignments: map[string]*models.ExamTeacherAssignment{},
		sheets:      map[uint]*models.AnswerSheet{},
		marks:       map[string]*models.QuestionMark{},
		grievances:  map[uint]*models.Grievance{},
		users:       map[string]*models.User{},
	}
}

func (f *fakeRepo) id() uint {
	if f.parent != nil {
		return f.parent.id()
	}
	f.nextID++
	return f.nextID
}

func markKey(sheetID uint, question int) string {
	return fmt.Sprintf("%d|%d", sheetID, question)
}

func pairKey(examID uint, who string) string {
	return fmt.Sprintf("%d|%s", examID, who)
}

// ===== TRANSACTIONS =====

func (f *fakeRepo) Begin(ctx context.Context) (repositories.Repository, error) {
	tx := newFakeRepo()
	tx.parent = f
	tx.markUpsertErr = f.markUpsertErr
	tx.markUpdateErr = f.markUpdateErr
	tx.sheetCreateErr = f.sheetCreateErr
	tx.sheetUpdateErr = f.sheetUpdateErr
	tx.commitErr = f.commitErr
	tx.beforeGrievanceUpdate = f.beforeGrievanceUpdate
	for k, v := range f.departments {
		c := *v
		tx.departments[k] = &c
	}
	for k, v := range f.subjects {
		c := *v
		tx.subjects[k] = &c
	}
	for k, v := range f.exams {
		c := *v
		tx.exams[k] = &c
	}
	for k, v := range f.enrollments {
		c := *v
		tx.enrollments[k] = &c
	}
	for k, v := range f.assignments {
		c := *v
		tx.assignments[k] = &c
	}
	for k, v := range f.sheets {
		c := *v
		tx.sheets[k] = &c
	}
	for k, v := range f.marks {
		c := *v
		tx.marks[k] = &c
	}
	for k, v := range f.grievances {
		c := *v
		tx.grievances[k] = &c
	}
	for k, v := range f.users {
		c := *v
		tx.users[k] = &c
	}
	tx.annotations = append([]*models.Annotation(nil), f.annotations...)
	return tx, nil
}

func (f *fakeRepo) Commit(ctx context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	if f.parent == nil {
		return nil
	}
	f.parent.departments = f.departments
	f.parent.subjects = f.subjects
	f.parent.exams = f.exams
	f.parent.enrollments = f.enrollments
	f.parent.assignments = f.assignments
	f.parent.sheets = f.sheets
	f.parent.marks = f.marks
	f.parent.annotations = f.annotations
	f.parent.grievances = f.grievances
	f.parent.users = f.users
	f.committed = true
	return nil
}

func (f *fakeRepo) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return nil
}

// ===== SUB-REPOSITORY ACCESSORS =====

func (f *fakeRepo) Department() repositories.DepartmentRepository { return &fakeDepartments{f} }
func (f *fakeRepo) Subject() repositories.SubjectRepository       { return &fakeSubjects{f} }
func (f *fakeRepo) Exam() repositories.ExamRepository             { return &fakeExams{f} }
func (f *fakeRepo) Enrollment() repositories.EnrollmentRepository { return &fakeEnrollments{f} }
func (f *fakeRepo) Assignment() repositories.AssignmentRepository { return &fakeAssignments{f} }
func (f *fakeRepo) Sheet() repositories.SheetRepository           { return &fakeSheets{f} }
func (f *fakeRepo) Mark() repositories.MarkRepository             { return &fakeMarks{f} }
func (f *fakeRepo) Annotation() repositories.AnnotationRepository { return &fakeAnnotations{f} }
func (f *fakeRepo) Grievance() repositories.GrievanceRepository   { return &fakeGrievances{f} }
func (f *fakeRepo) User() repositories.UserRepository             { return &fakeUsers{f} }

type fakeDepartments struct{ r *fakeRepo }

func (d *fakeDepartments) Create(ctx context.Context, department *models.Department) error {
	department.ID = d.r.id()
	d.r.departments[department.ID] = department
	return nil
}

func (d *fakeDepartments) GetByID(ctx context.Context, id uint) (*models.Department, error) {
	if dep, ok := d.r.departments[id]; ok {
		return dep, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (d *fakeDepartments) GetByName(ctx context.Context, name string) (*models.Department, error) {
	for _, dep := range d.r.departments {
		if strings.EqualFold(dep.Name, name) {
			return dep, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (d *fakeDepartments) List(ctx context.Context) ([]*models.Department, error) {
	out := make([]*models.Department, 0, len(d.r.departments))
	for _, dep := range d.r.departments {
		out = append(out, dep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *fakeDepartments) Update(ctx context.Context, department *models.Department) error {
	d.r.departments[department.ID] = department
	return nil
}

func (d *fakeDepartments) Delete(ctx context.Context, id uint) error {
	delete(d.r.departments, id)
	return nil
}

type fakeSubjects struct{ r *fakeRepo }

func (s *fakeSubjects) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = s.r.id()
	s.r.subjects[subject.ID] = subject
	return nil
}

func (s *fakeSubjects) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	if sub, ok := s.r.subjects[id]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeSubjects) GetByDepartment(ctx context.Context, departmentID uint) ([]*models.Subject, error) {
	var out []*models.Subject
	for _, sub := range s.r.subjects {
		if sub.DepartmentID == departmentID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *fakeSubjects) List(ctx context.Context) ([]*models.Subject, error) {
	out := make([]*models.Subject, 0, len(s.r.subjects))
	for _, sub := range s.r.subjects {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeSubjects) Update(ctx context.Context, subject *models.Subject) error {
	s.r.subjects[subject.ID] = subject
	return nil
}

func (s *fakeSubjects) Delete(ctx context.Context, id uint) error {
	delete(s.r.subjects, id)
	return nil
}

type fakeExams struct{ r *fakeRepo }

func (e *fakeExams) Create(ctx context.Context, exam *models.Exam) error {
	exam.ID = e.r.id()
	e.r.exams[exam.ID] = exam
	return nil
}

func (e *fakeExams) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	if exam, ok := e.r.exams[id]; ok {
		return exam, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (e *fakeExams) GetByIDWithDetails(ctx context.Context, id uint) (*models.Exam, error) {
	return e.GetByID(ctx, id)
}

func (e *fakeExams) Update(ctx context.Context, exam *models.Exam) error {
	if _, ok := e.r.exams[exam.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	e.r.exams[exam.ID] = exam
	return nil
}

func (e *fakeExams) Delete(ctx context.Context, id uint) error {
	delete(e.r.exams, id)
	return nil
}

func (e *fakeExams) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var out []*models.Exam
	for _, exam := range e.r.exams {
		if filters.SubjectID != nil && exam.SubjectID != *filters.SubjectID {
			continue
		}
		out = append(out, exam)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (e *fakeExams) GetByIDs(ctx context.Context, ids []uint) ([]*models.Exam, error) {
	var out []*models.Exam
	for _, id := range ids {
		if exam, ok := e.r.exams[id]; ok {
			out = append(out, exam)
		}
	}
	return out, nil
}

func (e *fakeExams) ExistsByName(ctx context.Context, name string, subjectID uint, excludeID *uint) (bool, error) {
	for _, exam := range e.r.exams {
		if excludeID != nil && exam.ID == *excludeID {
			continue
		}
		if exam.SubjectID == subjectID && strings.EqualFold(exam.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (e *fakeExams) Count(ctx context.Context) (int64, error) {
	return int64(len(e.r.exams)), nil
}

type fakeEnrollments struct{ r *fakeRepo }

func (e *fakeEnrollments) Create(ctx context.Context, enrollment *models.ExamEnrollment) error {
	key := pairKey(enrollment.ExamID, enrollment.StudentID)
	if _, ok := e.r.enrollments[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	enrollment.ID = e.r.id()
	e.r.enrollments[key] = enrollment
	return nil
}

func (e *fakeEnrollments) BulkCreate(ctx context.Context, enrollments []*models.ExamEnrollment) error {
	for _, en := range enrollments {
		if err := e.Create(ctx, en); err != nil {
			return err
		}
	}
	return nil
}

func (e *fakeEnrollments) GetByExam(ctx context.Context, examID uint) ([]*models.ExamEnrollment, error) {
	var out []*models.ExamEnrollment
	for _, en := range e.r.enrollments {
		if en.ExamID == examID {
			out = append(out, en)
		}
	}
	return out, nil
}

func (e *fakeEnrollments) GetByStudent(ctx context.Context, studentID string) ([]*models.ExamEnrollment, error) {
	var out []*models.ExamEnrollment
	for _, en := range e.r.enrollments {
		if en.StudentID == studentID {
			out = append(out, en)
		}
	}
	return out, nil
}

func (e *fakeEnrollments) Exists(ctx context.Context, examID uint, studentID string) (bool, error) {
	_, ok := e.r.enrollments[pairKey(examID, studentID)]
	return ok, nil
}

func (e *fakeEnrollments) Delete(ctx context.Context, examID uint, studentID string) error {
	key := pairKey(examID, studentID)
	if _, ok := e.r.enrollments[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(e.r.enrollments, key)
	return nil
}

type fakeAssignments struct{ r *fakeRepo }

func (a *fakeAssignments) Upsert(ctx context.Context, assignment *models.ExamTeacherAssignment) error {
	key := pairKey(assignment.ExamID, assignment.TeacherID)
	if existing, ok := a.r.assignments[key]; ok {
		assignment.ID = existing.ID
	} else {
		assignment.ID = a.r.id()
	}
	a.r.assignments[key] = assignment
	return nil
}

func (a *fakeAssignments) GetByExamAndTeacher(ctx context.Context, examID uint, teacherID string) (*models.ExamTeacherAssignment, error) {
	if assignment, ok := a.r.assignments[pairKey(examID, teacherID)]; ok {
		return assignment, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (a *fakeAssignments) GetByExam(ctx context.Context, examID uint) ([]*models.ExamTeacherAssignment, error) {
	var out []*models.ExamTeacherAssignment
	for _, assignment := range a.r.assignments {
		if assignment.ExamID == examID {
			out = append(out, assignment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *fakeAssignments) GetByTeacher(ctx context.Context, teacherID string) ([]*models.ExamTeacherAssignment, error) {
	var out []*models.ExamTeacherAssignment
	for _, assignment := range a.r.assignments {
		if assignment.TeacherID == teacherID {
			out = append(out, assignment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *fakeAssignments) Delete(ctx context.Context, examID uint, teacherID string) error {
	key := pairKey(examID, teacherID)
	if _, ok := a.r.assignments[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(a.r.assignments, key)
	return nil
}

func (a *fakeAssignments) ExamIDsForTeacher(ctx context.Context, teacherID string) ([]uint, error) {
	var out []uint
	for _, assignment := range a.r.assignments {
		if assignment.TeacherID == teacherID {
			out = append(out, assignment.ExamID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type fakeSheets struct{ r *fakeRepo }

func (s *fakeSheets) Create(ctx context.Context, sheet *models.AnswerSheet) error {
	if s.r.sheetCreateErr != nil {
		return s.r.sheetCreateErr
	}
	sheet.ID = s.r.id()
	s.r.sheets[sheet.ID] = sheet
	return nil
}

func (s *fakeSheets) GetByID(ctx context.Context, id uint) (*models.AnswerSheet, error) {
	if sheet, ok := s.r.sheets[id]; ok {
		c := *sheet
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeSheets) GetByIDWithDetails(ctx context.Context, id uint) (*models.AnswerSheet, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeSheets) Update(ctx context.Context, sheet *models.AnswerSheet) error {
	if s.r.sheetUpdateErr != nil {
		return s.r.sheetUpdateErr
	}
	if _, ok := s.r.sheets[sheet.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *sheet
	s.r.sheets[sheet.ID] = &c
	return nil
}

func (s *fakeSheets) List(ctx context.Context, filters repositories.SheetFilters) ([]*models.AnswerSheet, int64, error) {
	var out []*models.AnswerSheet
	for _, sheet := range s.r.sheets {
		if filters.ExamID != nil && sheet.ExamID != *filters.ExamID {
			continue
		}
		if len(filters.ExamIDs) > 0 && !containsUint(filters.ExamIDs, sheet.ExamID) {
			continue
		}
		if filters.StudentID != nil && sheet.StudentID != *filters.StudentID {
			continue
		}
		if filters.GradingStatus != nil && sheet.GradingStatus != *filters.GradingStatus {
			continue
		}
		out = append(out, sheet)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *fakeSheets) GetByExamAndStudent(ctx context.Context, examID uint, studentID string) (*models.AnswerSheet, error) {
	for _, sheet := range s.r.sheets {
		if sheet.ExamID == examID && sheet.StudentID == studentID {
			return sheet, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeSheets) GetStats(ctx context.Context, filters repositories.SheetFilters) (*repositories.SheetStats, error) {
	stats := &repositories.SheetStats{}
	var sum float64
	for _, sheet := range s.r.sheets {
		stats.TotalSheets++
		if sheet.GradingStatus == models.GradingCompleted {
			stats.GradedSheets++
			sum += sheet.ObtainedMarks
		} else {
			stats.PendingSheets++
		}
	}
	if stats.GradedSheets > 0 {
		stats.AverageMarks = sum / float64(stats.GradedSheets)
	}
	return stats, nil
}

func (s *fakeSheets) CountByDepartment(ctx context.Context, filters repositories.SheetFilters) ([]repositories.DepartmentCount, error) {
	return nil, nil
}

type fakeMarks struct{ r *fakeRepo }

func (m *fakeMarks) Upsert(ctx context.Context, mark *models.QuestionMark) error {
	if m.r.markUpsertErr != nil {
		return m.r.markUpsertErr
	}
	key := markKey(mark.AnswerSheetID, mark.QuestionNumber)
	if existing, ok := m.r.marks[key]; ok {
		mark.ID = existing.ID
	} else {
		mark.ID = m.r.id()
	}
	c := *mark
	m.r.marks[key] = &c
	return nil
}

func (m *fakeMarks) Get(ctx context.Context, sheetID uint, questionNumber int) (*models.QuestionMark, error) {
	if mark, ok := m.r.marks[markKey(sheetID, questionNumber)]; ok {
		c := *mark
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *fakeMarks) GetBySheet(ctx context.Context, sheetID uint) ([]*models.QuestionMark, error) {
	var out []*models.QuestionMark
	for _, mark := range m.r.marks {
		if mark.AnswerSheetID == sheetID {
			out = append(out, mark)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionNumber < out[j].QuestionNumber })
	return out, nil
}

func (m *fakeMarks) SumForSheet(ctx context.Context, sheetID uint) (float64, error) {
	var sum float64
	for _, mark := range m.r.marks {
		if mark.AnswerSheetID == sheetID {
			sum += mark.ObtainedMarks
		}
	}
	return sum, nil
}

func (m *fakeMarks) CountForSheet(ctx context.Context, sheetID uint) (int64, error) {
	var count int64
	for _, mark := range m.r.marks {
		if mark.AnswerSheetID == sheetID {
			count++
		}
	}
	return count, nil
}

func (m *fakeMarks) Update(ctx context.Context, mark *models.QuestionMark) error {
	if m.r.markUpdateErr != nil {
		return m.r.markUpdateErr
	}
	key := markKey(mark.AnswerSheetID, mark.QuestionNumber)
	if _, ok := m.r.marks[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *mark
	m.r.marks[key] = &c
	return nil
}

type fakeAnnotations struct{ r *fakeRepo }

func (a *fakeAnnotations) Create(ctx context.Context, annotation *models.Annotation) error {
	annotation.ID = a.r.id()
	a.r.annotations = append(a.r.annotations, annotation)
	return nil
}

func (a *fakeAnnotations) BulkCreate(ctx context.Context, annotations []*models.Annotation) error {
	for _, an := range annotations {
		if err := a.Create(ctx, an); err != nil {
			return err
		}
	}
	return nil
}

func (a *fakeAnnotations) GetBySheet(ctx context.Context, sheetID uint) ([]*models.Annotation, error) {
	var out []*models.Annotation
	for _, an := range a.r.annotations {
		if an.AnswerSheetID == sheetID {
			out = append(out, an)
		}
	}
	return out, nil
}

type fakeGrievances struct{ r *fakeRepo }

func (g *fakeGrievances) Create(ctx context.Context, grievance *models.Grievance) error {
	grievance.ID = g.r.id()
	c := *grievance
	g.r.grievances[grievance.ID] = &c
	return nil
}

func (g *fakeGrievances) GetByID(ctx context.Context, id uint) (*models.Grievance, error) {
	if grievance, ok := g.r.grievances[id]; ok {
		c := *grievance
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (g *fakeGrievances) GetByIDWithDetails(ctx context.Context, id uint) (*models.Grievance, error) {
	return g.GetByID(ctx, id)
}

func (g *fakeGrievances) List(ctx context.Context, filters repositories.GrievanceFilters) ([]*models.Grievance, int64, error) {
	var out []*models.Grievance
	for _, grievance := range g.r.grievances {
		if filters.StudentID != nil && grievance.StudentID != *filters.StudentID {
			continue
		}
		if filters.TeacherID != nil && grievance.TeacherID != *filters.TeacherID {
			continue
		}
		if filters.Status != nil && grievance.Status != *filters.Status {
			continue
		}
		if filters.AnswerSheetID != nil && grievance.AnswerSheetID != *filters.AnswerSheetID {
			continue
		}
		if len(filters.ExamIDs) > 0 {
			sheet, ok := g.r.sheets[grievance.AnswerSheetID]
			if !ok || !containsUint(filters.ExamIDs, sheet.ExamID) {
				continue
			}
		}
		out = append(out, grievance)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (g *fakeGrievances) HasOpenGrievance(ctx context.Context, sheetID uint, questionNumber int, subQuestion *string) (bool, error) {
	for _, grievance := range g.r.grievances {
		if grievance.AnswerSheetID != sheetID || grievance.QuestionNumber != questionNumber {
			continue
		}
		if !sameSubQuestion(grievance.SubQuestionNumber, subQuestion) {
			continue
		}
		if !grievance.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (g *fakeGrievances) UpdateWithVersion(ctx context.Context, grievance *models.Grievance, expectedVersion int) error {
	if g.r.beforeGrievanceUpdate != nil {
		hook := g.r.beforeGrievanceUpdate
		g.r.beforeGrievanceUpdate = nil
		hook(g.r)
	}
	stored, ok := g.r.grievances[grievance.ID]
	if !ok || stored.Version != expectedVersion {
		return gorm.ErrRecordNotFound
	}
	grievance.Version = expectedVersion + 1
	c := *grievance
	g.r.grievances[grievance.ID] = &c
	return nil
}

func (g *fakeGrievances) GetStats(ctx context.Context, filters repositories.GrievanceFilters) (*repositories.GrievanceStats, error) {
	stats := &repositories.GrievanceStats{
		StatusBreakdown: map[models.GrievanceStatus]int64{},
	}
	var revisionSum float64
	var resolved int64
	for _, grievance := range g.r.grievances {
		stats.TotalGrievances++
		stats.StatusBreakdown[grievance.Status]++
		if grievance.Status == models.GrievanceResolved && grievance.UpdatedMarks != nil {
			revisionSum += *grievance.UpdatedMarks - grievance.CurrentMarks
			resolved++
		}
	}
	if resolved > 0 {
		stats.AverageRevision = revisionSum / float64(resolved)
	}
	return stats, nil
}

type fakeUsers struct{ r *fakeRepo }

func (u *fakeUsers) Upsert(ctx context.Context, user *models.User) error {
	u.r.users[user.ID] = user
	return nil
}

func (u *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := u.r.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range u.r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *fakeUsers) ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	var out []*models.User
	for _, user := range u.r.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	return out, nil
}

func containsUint(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func sameSubQuestion(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
