package controllers

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	courseModels "edumart/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var certPattern = regexp.MustCompile(`^CERT-[0-9a-f-]{36}$`)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps concurrent test writers queued instead of
	// tripping sqlite's lock errors
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Quiz{},
		&courseModels.QuizQuestion{},
		&courseModels.Enrollment{},
	))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// seedCourse creates a published course with moduleCount modules, each with a
// 3-question quiz (10 points each) at the given passing threshold.
func seedCourse(t *testing.T, db *gorm.DB, moduleCount int, passingScore float64) (*courseModels.Course, []courseModels.Quiz) {
	t.Helper()

	course := courseModels.Course{
		Title:       "Equity Basics",
		Status:      "ACTIVE",
		PriceAmount: 149900,
		Currency:    "INR",
		IsPublished: true,
	}
	require.NoError(t, db.Create(&course).Error)

	quizzes := make([]courseModels.Quiz, 0, moduleCount)
	for i := 0; i < moduleCount; i++ {
		module := courseModels.Module{
			CourseID:   course.ID,
			Title:      fmt.Sprintf("Module %d", i+1),
			OrderIndex: i,
		}
		require.NoError(t, db.Create(&module).Error)

		quiz := courseModels.Quiz{
			CourseID:     course.ID,
			ModuleIndex:  i,
			Title:        fmt.Sprintf("Module %d quiz", i+1),
			PassingScore: passingScore,
			IsPublished:  true,
		}
		require.NoError(t, db.Create(&quiz).Error)

		for j := 0; j < 3; j++ {
			q := question(0, 0, 10, j)
			q.ID = 0
			q.QuizID = quiz.ID
			require.NoError(t, db.Create(&q).Error)
		}

		require.NoError(t, db.Preload("Questions").First(&quiz, quiz.ID).Error)
		quizzes = append(quizzes, quiz)
	}

	return &course, quizzes
}

func enroll(t *testing.T, db *gorm.DB, userID, courseID uint) *courseModels.Enrollment {
	t.Helper()
	e := courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   courseModels.EnrollmentActive,
	}
	require.NoError(t, db.Create(&e).Error)
	return &e
}

func resultFor(quizID uint, percentage float64, passed bool) *QuizAttemptResult {
	return &QuizAttemptResult{
		QuizID:     quizID,
		Percentage: percentage,
		Passed:     passed,
	}
}

func TestApplyQuizResultFailingAttempt(t *testing.T) {
	db := setupTestDB(t)
	course, quizzes := seedCourse(t, db, 2, 70)
	enroll(t, db, 1, course.ID)

	updated, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 50, false))
	require.NoError(t, err)

	assert.Empty(t, updated.CompletedModules)
	assert.Equal(t, courseModels.EnrollmentActive, updated.Status)
	assert.Empty(t, updated.CertificateNumber)
	require.Len(t, updated.ScoreHistory, 1)
	assert.False(t, updated.ScoreHistory[0].Passed)
	assert.Equal(t, float64(50), updated.ScoreHistory[0].Percentage)
}

func TestApplyQuizResultNotEnrolled(t *testing.T) {
	db := setupTestDB(t)
	_, quizzes := seedCourse(t, db, 1, 70)

	_, err := ApplyQuizResult(db, 42, &quizzes[0], resultFor(quizzes[0].ID, 100, true))
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestApplyQuizResultConsecutiveFailuresKeepLatest(t *testing.T) {
	db := setupTestDB(t)
	course, quizzes := seedCourse(t, db, 2, 70)
	enroll(t, db, 1, course.ID)

	_, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 30, false))
	require.NoError(t, err)

	updated, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 60, false))
	require.NoError(t, err)

	// A failed retry replaces the previous failure; only the latest standing
	// is kept per quiz
	require.Len(t, updated.ScoreHistory, 1)
	assert.Equal(t, float64(60), updated.ScoreHistory[0].Percentage)
	assert.False(t, updated.ScoreHistory[0].Passed)
	assert.Empty(t, updated.CompletedModules)
}

func TestApplyQuizResultFailureNeverReplacesPass(t *testing.T) {
	db := setupTestDB(t)
	course, quizzes := seedCourse(t, db, 2, 70)
	enroll(t, db, 1, course.ID)

	_, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 80, true))
	require.NoError(t, err)

	updated, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 20, false))
	require.NoError(t, err)

	// The pass stays in the history; the later failure is appended after it
	require.Len(t, updated.ScoreHistory, 2)
	assert.True(t, updated.ScoreHistory[0].Passed)
	assert.Equal(t, float64(80), updated.ScoreHistory[0].Percentage)
	assert.False(t, updated.ScoreHistory[1].Passed)
	assert.Equal(t, []string{"module-0"}, []string(updated.CompletedModules))
}

func TestApplyQuizResultRetryUpsertsScore(t *testing.T) {
	db := setupTestDB(t)
	course, quizzes := seedCourse(t, db, 2, 70)
	enroll(t, db, 1, course.ID)

	// Fail first, then pass with a better score
	_, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 50, false))
	require.NoError(t, err)

	updated, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 80, true))
	require.NoError(t, err)

	// Retry replaced the entry instead of appending a duplicate
	require.Len(t, updated.ScoreHistory, 1)
	assert.Equal(t, float64(80), updated.ScoreHistory[0].Percentage)
	assert.True(t, updated.ScoreHistory[0].Passed)
	assert.Equal(t, []string{"module-0"}, []string(updated.CompletedModules))
	assert.Equal(t, courseModels.EnrollmentActive, updated.Status)
}

func TestApplyQuizResultRetakePassedQuizIdempotent(t *testing.T) {
	db := setupTestDB(t)
	course, quizzes := seedCourse(t, db, 2, 70)
	enroll(t, db, 1, course.ID)

	_, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 80, true))
	require.NoError(t, err)

	updated, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 90, true))
	require.NoError(t, err)

	// Retaking a passed quiz must not double-count the module
	assert.Equal(t, []string{"module-0"}, []string(updated.CompletedModules))
	require.Len(t, updated.ScoreHistory, 1)
	assert.Equal(t, float64(90), updated.ScoreHistory[0].Percentage)
}

func TestApplyQuizResultCompletionScenario(t *testing.T) {
	// Course with 2 modules, threshold 70%: fail module 0 at 50%, retake at
	// 80%, then pass module 1
	db := setupTestDB(t)
	course, quizzes := seedCourse(t, db, 2, 70)
	enroll(t, db, 1, course.ID)

	updated, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 50, false))
	require.NoError(t, err)
	assert.Empty(t, updated.CompletedModules)
	assert.Equal(t, courseModels.EnrollmentActive, updated.Status)

	updated, err = ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 80, true))
	require.NoError(t, err)
	assert.Equal(t, []string{"module-0"}, []string(updated.CompletedModules))
	assert.Equal(t, courseModels.EnrollmentActive, updated.Status)

	updated, err = ApplyQuizResult(db, 1, &quizzes[1], resultFor(quizzes[1].ID, 100, true))
	require.NoError(t, err)
	assert.Equal(t, []string{"module-0", "module-1"}, []string(updated.CompletedModules))
	assert.Equal(t, courseModels.EnrollmentCompleted, updated.Status)
	assert.Equal(t, float64(100), updated.Progress)
	require.NotNil(t, updated.CompletedAt)
	assert.Regexp(t, certPattern, updated.CertificateNumber)
}

func TestApplyQuizResultCertificateMintedOnce(t *testing.T) {
	db := setupTestDB(t)
	course, quizzes := seedCourse(t, db, 1, 70)
	enroll(t, db, 1, course.ID)

	first, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 100, true))
	require.NoError(t, err)
	require.Equal(t, courseModels.EnrollmentCompleted, first.Status)
	cert := first.CertificateNumber
	require.Regexp(t, certPattern, cert)

	// More activity after completion must not reassign the certificate
	again, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 100, true))
	require.NoError(t, err)
	assert.Equal(t, cert, again.CertificateNumber)
	assert.Equal(t, courseModels.EnrollmentCompleted, again.Status)
}

func TestApplyQuizResultMonotonicAfterCompletion(t *testing.T) {
	db := setupTestDB(t)
	course, quizzes := seedCourse(t, db, 1, 70)
	enroll(t, db, 1, course.ID)

	completed, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 100, true))
	require.NoError(t, err)
	require.Equal(t, courseModels.EnrollmentCompleted, completed.Status)

	// A failing retake must not shrink the set or revert the status
	after, err := ApplyQuizResult(db, 1, &quizzes[0], resultFor(quizzes[0].ID, 10, false))
	require.NoError(t, err)
	assert.Equal(t, courseModels.EnrollmentCompleted, after.Status)
	assert.Equal(t, []string{"module-0"}, []string(after.CompletedModules))
	assert.Equal(t, completed.CertificateNumber, after.CertificateNumber)
}

func TestApplyQuizResultConcurrentSubmissions(t *testing.T) {
	db := setupTestDB(t)
	course, quizzes := seedCourse(t, db, 2, 70)
	enroll(t, db, 1, course.ID)

	// Two passing submissions for different modules race the completion
	// transition
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ApplyQuizResult(db, 1, &quizzes[i], resultFor(quizzes[i].ID, 100, true))
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	var final courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&final).Error)

	assert.ElementsMatch(t, []string{"module-0", "module-1"}, []string(final.CompletedModules))
	assert.Equal(t, courseModels.EnrollmentCompleted, final.Status)
	assert.Regexp(t, certPattern, final.CertificateNumber)
	assert.Len(t, final.ScoreHistory, 2)
}

func TestCheckModuleAccess(t *testing.T) {
	enrollment := &courseModels.Enrollment{}

	assert.NoError(t, CheckModuleAccess(enrollment, 0), "module 0 is always accessible")
	assert.ErrorIs(t, CheckModuleAccess(enrollment, 1), ErrModuleLocked)

	enrollment.CompletedModules = append(enrollment.CompletedModules, courseModels.ModuleKey(0))
	assert.NoError(t, CheckModuleAccess(enrollment, 1))
	assert.ErrorIs(t, CheckModuleAccess(enrollment, 2), ErrModuleLocked)
}
