package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/linguabridge/exam-grading-service/internal/cache"
	"github.com/linguabridge/exam-grading-service/internal/events"
	"github.com/linguabridge/exam-grading-service/internal/models"
	"github.com/linguabridge/exam-grading-service/internal/repositories"
	"github.com/linguabridge/exam-grading-service/internal/validator"
)

// ===== IN-MEMORY REPOSITORY =====

type fakeRepo struct {
	exams       map[uint]*models.Exam
	sessions    map[uint]*models.ExamSession
	results     map[uint]*models.SessionResult
	nextSession uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		exams:       make(map[uint]*models.Exam),
		sessions:    make(map[uint]*models.ExamSession),
		results:     make(map[uint]*models.SessionResult),
		nextSession: 1,
	}
}

func (f *fakeRepo) Exam() repositories.ExamRepository       { return fakeExamRepo{f} }
func (f *fakeRepo) Session() repositories.SessionRepository { return fakeSessionRepo{f} }
func (f *fakeRepo) Result() repositories.ResultRepository   { return fakeResultRepo{f} }

func (f *fakeRepo) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

type fakeExamRepo struct{ f *fakeRepo }

func (r fakeExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == 0 {
		exam.ID = uint(len(r.f.exams) + 1)
	}
	r.f.exams[exam.ID] = exam
	return nil
}

func (r fakeExamRepo) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	exam, ok := r.f.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (r fakeExamRepo) GetByIDWithTree(ctx context.Context, id uint) (*models.Exam, error) {
	return r.GetByID(ctx, id)
}

func (r fakeExamRepo) Update(ctx context.Context, exam *models.Exam) error {
	r.f.exams[exam.ID] = exam
	return nil
}

func (r fakeExamRepo) UpdateStatus(ctx context.Context, id uint, status models.ExamStatus) error {
	exam, ok := r.f.exams[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	exam.Status = status
	return nil
}

func (r fakeExamRepo) Delete(ctx context.Context, id uint) error {
	delete(r.f.exams, id)
	return nil
}

func (r fakeExamRepo) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var out []*models.Exam
	for _, exam := range r.f.exams {
		out = append(out, exam)
	}
	return out, int64(len(out)), nil
}

type fakeSessionRepo struct{ f *fakeRepo }

func (r fakeSessionRepo) Create(ctx context.Context, session *models.ExamSession) error {
	session.ID = r.f.nextSession
	r.f.nextSession++
	r.f.sessions[session.ID] = session
	return nil
}

func (r fakeSessionRepo) GetByID(ctx context.Context, id uint) (*models.ExamSession, error) {
	session, ok := r.f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if exam, ok := r.f.exams[session.ExamID]; ok {
		session.Exam = *exam
	}
	return session, nil
}

func (r fakeSessionRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.ExamSession, error) {
	return r.GetByID(ctx, id)
}

func (r fakeSessionRepo) Update(ctx context.Context, session *models.ExamSession) error {
	r.f.sessions[session.ID] = session
	return nil
}

func (r fakeSessionRepo) UpdateAnswers(ctx context.Context, id uint, answers []byte) error {
	session, ok := r.f.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.Answers = datatypes.JSON(answers)
	return nil
}

func (r fakeSessionRepo) GetActiveSession(ctx context.Context, studentID string, examID uint) (*models.ExamSession, error) {
	for _, session := range r.f.sessions {
		if session.StudentID == studentID && session.ExamID == examID && session.Status == models.SessionInProgress {
			return session, nil
		}
	}
	return nil, nil
}

func (r fakeSessionRepo) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	var out []*models.ExamSession
	for _, session := range r.f.sessions {
		out = append(out, session)
	}
	return out, int64(len(out)), nil
}

type fakeResultRepo struct{ f *fakeRepo }

func (r fakeResultRepo) Upsert(ctx context.Context, result *models.SessionResult) error {
	if existing, ok := r.f.results[result.SessionID]; ok {
		result.ID = existing.ID
	} else {
		result.ID = uint(len(r.f.results) + 1)
	}
	r.f.results[result.SessionID] = result
	return nil
}

func (r fakeResultRepo) GetBySession(ctx context.Context, sessionID uint) (*models.SessionResult, error) {
	result, ok := r.f.results[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return result, nil
}

func (r fakeResultRepo) DeleteBySession(ctx context.Context, sessionID uint) error {
	delete(r.f.results, sessionID)
	return nil
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// readingExam builds an active reading exam with four gradable units: two
// gaps, one single-choice answer, and one all-or-nothing option set.
func readingExam() *models.Exam {
	partTitle := "Passage 1"
	return &models.Exam{
		ID:       1,
		Title:    "Academic Reading Practice 4",
		Module:   models.ModuleReading,
		Status:   models.ExamStatusActive,
		Duration: 60,
		Parts: []models.ExamPart{
			{
				ID:         1,
				ExamID:     1,
				PartNumber: 1,
				Title:      &partTitle,
				Questions: []models.Question{
					{
						ID:            31,
						PartID:        1,
						Order:         1,
						Type:          models.GapFill,
						Points:        1,
						ExtraMetadata: datatypes.JSON(`{"gaps":[{"number":1,"answer":"rats"},{"number":2,"answer":"sugar"}]}`),
					},
					{
						ID:                40,
						PartID:            1,
						Order:             2,
						Type:              models.SingleChoice,
						Points:            1,
						CorrectAnswerSpec: datatypes.JSON(`"B"`),
						Options: datatypes.JSON(`[{"label":"A","text":"first"},{"label":"B","text":"second"},{"label":"C","text":"third"}]`),
					},
					{
						ID:                50,
						PartID:            1,
						Order:             3,
						Type:              models.MultipleResponse,
						Points:            1,
						CorrectAnswerSpec: datatypes.JSON(`["A","C"]`),
						Options: datatypes.JSON(`[{"label":"A","text":"a"},{"label":"B","text":"b"},{"label":"C","text":"c"}]`),
					},
				},
			},
		},
	}
}

func inProgressSession(repo *fakeRepo, answers string) *models.ExamSession {
	end := time.Now().Add(time.Hour)
	session := &models.ExamSession{
		ExamID:    1,
		StudentID: "student-7",
		Status:    models.SessionInProgress,
		Answers:   datatypes.JSON(answers),
		StartedAt: time.Now().Add(-30 * time.Minute),
		EndTime:   &end,
	}
	_ = repo.Session().Create(context.Background(), session)
	return session
}

type gradingFixture struct {
	repo      *fakeRepo
	publisher *events.MockEventPublisher
	service   GradingService
}

func newGradingFixture(t *testing.T) *gradingFixture {
	t.Helper()
	repo := newFakeRepo()
	repo.exams[1] = readingExam()
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewGradingService(repo, testLogger(), cache.NewLocalSessionLock(), nil, publisher)
	return &gradingFixture{repo: repo, publisher: publisher, service: service}
}

// ===== GRADING TESTS =====

func TestGradeSession_ScoresAndConvertsBand(t *testing.T) {
	fx := newGradingFixture(t)
	session := inProgressSession(fx.repo,
		`{"31__gap1":"rats","31__gap2":"salt","40__B":true,"50__A":true,"50__C":true}`)

	resp, err := fx.service.GradeSession(context.Background(), session.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.RawScore)
	assert.Equal(t, 4, resp.TotalScore)
	// 3 of 4 normalizes to 30 of 40, band 7.0 on the reading table
	assert.InDelta(t, 7.0, resp.BandScore, 0.001)
	assert.Equal(t, models.ModuleReading, resp.Module)
	require.NotNil(t, resp.Breakdown)
	assert.Len(t, resp.Breakdown.Parts, 1)

	stored := fx.repo.sessions[session.ID]
	assert.Equal(t, models.SessionSubmitted, stored.Status)
	require.NotNil(t, stored.SubmittedAt)
	require.NotNil(t, stored.EndReason)
	assert.Equal(t, models.SessionEndReasonCompleted, *stored.EndReason)
}

func TestGradeSession_Idempotent(t *testing.T) {
	fx := newGradingFixture(t)
	session := inProgressSession(fx.repo, `{"31__gap1":"rats","40__B":true}`)

	first, err := fx.service.GradeSession(context.Background(), session.ID, nil)
	require.NoError(t, err)

	second, err := fx.service.GradeSession(context.Background(), session.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, first.RawScore, second.RawScore)
	assert.Equal(t, first.TotalScore, second.TotalScore)
	assert.Equal(t, first.BandScore, second.BandScore)

	firstJSON, _ := json.Marshal(first.Breakdown)
	secondJSON, _ := json.Marshal(second.Breakdown)
	assert.Equal(t, string(firstJSON), string(secondJSON))

	// one stored row, replaced not duplicated
	assert.Len(t, fx.repo.results, 1)
}

func TestGradeSession_MergesFinalAnswerBatch(t *testing.T) {
	fx := newGradingFixture(t)
	session := inProgressSession(fx.repo, `{"31__gap1":"rats"}`)

	resp, err := fx.service.GradeSession(context.Background(), session.ID, &GradeSessionRequest{
		Answers: map[string]interface{}{"31__gap2": "sugar"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.RawScore)

	// the synced key must survive the merge
	stored, err := fx.repo.Session().GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	var answers map[string]interface{}
	require.NoError(t, json.Unmarshal(stored.Answers, &answers))
	assert.Equal(t, "rats", answers["31__gap1"])
	assert.Equal(t, "sugar", answers["31__gap2"])
}

func TestGradeSession_LockHeldReturnsConflict(t *testing.T) {
	fx := newGradingFixture(t)
	session := inProgressSession(fx.repo, `{}`)

	locker := cache.NewLocalSessionLock()
	held, err := locker.Acquire(context.Background(), session.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	service := NewGradingService(fx.repo, testLogger(), locker, nil, fx.publisher)
	_, err = service.GradeSession(context.Background(), session.ID, nil)
	assert.ErrorIs(t, err, ErrGradingInProgress)
}

func TestGradeSession_PublishesEvents(t *testing.T) {
	fx := newGradingFixture(t)
	session := inProgressSession(fx.repo, `{"31__gap1":"rats"}`)

	_, err := fx.service.GradeSession(context.Background(), session.ID, nil)
	require.NoError(t, err)

	published := fx.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSessionGraded, published[0].Type)
	assert.Equal(t, session.ID, published[0].SessionID)
	assert.Equal(t, "student-7", published[0].StudentID)

	_, err = fx.service.Regrade(context.Background(), session.ID)
	require.NoError(t, err)

	published = fx.publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventSessionRegraded, published[1].Type)
}

func TestGradeSession_UnknownSession(t *testing.T) {
	fx := newGradingFixture(t)
	_, err := fx.service.GradeSession(context.Background(), 999, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegrade_RequiresSubmittedSession(t *testing.T) {
	fx := newGradingFixture(t)
	session := inProgressSession(fx.repo, `{}`)

	_, err := fx.service.Regrade(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotGraded)
}

func TestGetResult_ReadsStoredResult(t *testing.T) {
	fx := newGradingFixture(t)
	session := inProgressSession(fx.repo, `{"31__gap1":"rats","31__gap2":"sugar"}`)

	graded, err := fx.service.GradeSession(context.Background(), session.ID, nil)
	require.NoError(t, err)

	got, err := fx.service.GetResult(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, graded.RawScore, got.RawScore)
	assert.Equal(t, graded.BandScore, got.BandScore)
	require.NotNil(t, got.Breakdown)
	assert.Equal(t, graded.Breakdown.RawScore, got.Breakdown.RawScore)
}

func TestGetResult_NotGraded(t *testing.T) {
	fx := newGradingFixture(t)
	session := inProgressSession(fx.repo, `{}`)

	_, err := fx.service.GetResult(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestGetReview_RendersTree(t *testing.T) {
	fx := newGradingFixture(t)
	session := inProgressSession(fx.repo, `{"31__gap1":"rats","40__B":true}`)

	_, err := fx.service.GradeSession(context.Background(), session.ID, nil)
	require.NoError(t, err)

	review, err := fx.service.GetReview(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, review.Parts, 1)
	assert.Len(t, review.Parts[0].Questions, 3)
}

// ===== SESSION SERVICE TESTS =====

func newSessionService(repo *fakeRepo) SessionService {
	return NewSessionService(repo, testLogger(), validator.New())
}

func TestStartSession_RequiresActiveExam(t *testing.T) {
	repo := newFakeRepo()
	exam := readingExam()
	exam.Status = models.ExamStatusDraft
	repo.exams[1] = exam

	_, err := newSessionService(repo).Start(context.Background(), &StartSessionRequest{
		ExamID:    1,
		StudentID: "student-7",
	})
	assert.ErrorIs(t, err, ErrExamNotActive)
}

func TestStartSession_RejectsSecondActiveSession(t *testing.T) {
	repo := newFakeRepo()
	repo.exams[1] = readingExam()
	svc := newSessionService(repo)

	_, err := svc.Start(context.Background(), &StartSessionRequest{ExamID: 1, StudentID: "student-7"})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), &StartSessionRequest{ExamID: 1, StudentID: "student-7"})
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)
}

// notFoundSessionRepo surfaces gorm.ErrRecordNotFound from the active-session
// lookup the way a raw First(...) query does when no row matches.
type notFoundSessionRepo struct{ *fakeRepo }

func (r notFoundSessionRepo) Session() repositories.SessionRepository {
	return notFoundSessionStore{fakeSessionRepo{r.fakeRepo}}
}

type notFoundSessionStore struct{ fakeSessionRepo }

func (s notFoundSessionStore) GetActiveSession(ctx context.Context, studentID string, examID uint) (*models.ExamSession, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestStartSession_FirstStartTreatsNotFoundAsNoActiveSession(t *testing.T) {
	repo := newFakeRepo()
	repo.exams[1] = readingExam()
	svc := NewSessionService(notFoundSessionRepo{repo}, testLogger(), validator.New())

	session, err := svc.Start(context.Background(), &StartSessionRequest{
		ExamID:    1,
		StudentID: "student-7",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, session.Status)
}

func TestSyncAnswers_MergesBatches(t *testing.T) {
	repo := newFakeRepo()
	repo.exams[1] = readingExam()
	svc := newSessionService(repo)

	session, err := svc.Start(context.Background(), &StartSessionRequest{ExamID: 1, StudentID: "student-7"})
	require.NoError(t, err)

	_, err = svc.SyncAnswers(context.Background(), session.ID, &SyncAnswersRequest{
		Answers: map[string]interface{}{"31__gap1": "rats"},
	})
	require.NoError(t, err)

	updated, err := svc.SyncAnswers(context.Background(), session.ID, &SyncAnswersRequest{
		Answers: map[string]interface{}{"31__gap2": "sugar"},
	})
	require.NoError(t, err)

	var answers map[string]interface{}
	require.NoError(t, json.Unmarshal(updated.Answers, &answers))
	assert.Equal(t, "rats", answers["31__gap1"], "earlier batch must survive later syncs")
	assert.Equal(t, "sugar", answers["31__gap2"])
}

func TestSyncAnswers_RejectsClosedSession(t *testing.T) {
	repo := newFakeRepo()
	repo.exams[1] = readingExam()
	session := inProgressSession(repo, `{}`)
	session.Status = models.SessionSubmitted

	_, err := newSessionService(repo).SyncAnswers(context.Background(), session.ID, &SyncAnswersRequest{
		Answers: map[string]interface{}{"31__gap1": "rats"},
	})
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

// ===== EXAM SERVICE TESTS =====

func newExamService(repo *fakeRepo) ExamService {
	return NewExamService(repo, testLogger(), validator.New())
}

func TestActivateExam_RunsIntegrityChecks(t *testing.T) {
	repo := newFakeRepo()
	exam := readingExam()
	exam.Status = models.ExamStatusDraft
	// break the gap-fill question: no gaps anywhere
	exam.Parts[0].Questions[0].ExtraMetadata = nil
	repo.exams[1] = exam

	_, err := newExamService(repo).Activate(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExamInvalidContent)
	assert.Equal(t, models.ExamStatusDraft, repo.exams[1].Status)
}

func TestActivateExam_ValidContent(t *testing.T) {
	repo := newFakeRepo()
	exam := readingExam()
	exam.Status = models.ExamStatusDraft
	repo.exams[1] = exam

	activated, err := newExamService(repo).Activate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusActive, activated.Status)
}

func TestActivateExam_RejectsArchived(t *testing.T) {
	repo := newFakeRepo()
	exam := readingExam()
	exam.Status = models.ExamStatusArchived
	repo.exams[1] = exam

	_, err := newExamService(repo).Activate(context.Background(), 1)
	assert.ErrorIs(t, err, ErrExamInvalidStatus)
}

func TestDeleteExam_RefusesActive(t *testing.T) {
	repo := newFakeRepo()
	repo.exams[1] = readingExam()

	err := newExamService(repo).Delete(context.Background(), 1)
	assert.ErrorIs(t, err, ErrExamNotDeletable)
}
