package controllers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"edumart/events"
	courseModels "edumart/models/course"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotEnrolled means no enrollment exists for the (user, course) pair
	ErrNotEnrolled = errors.New("user not enrolled in course")
	// ErrModuleLocked means the previous module has not been completed yet
	ErrModuleLocked = errors.New("previous module not completed")
	// ErrProgressConflict means the compare-and-swap retries were exhausted
	ErrProgressConflict = errors.New("enrollment updated concurrently, retries exhausted")
)

// How many times ApplyQuizResult re-reads and retries on a version conflict
const progressUpdateRetries = 5

// MintCertificateNumber returns a fresh certification identifier
func MintCertificateNumber() string {
	return fmt.Sprintf("CERT-%s", uuid.NewString())
}

// ApplyQuizResult folds a graded attempt into the user's enrollment. Failing
// attempts only extend the score history. Passing attempts upsert the history
// entry for the quiz and add the module key to the completed set; when the
// set covers every module the enrollment flips to COMPLETED and a certificate
// number is minted, once, on that edge.
//
// Concurrent submissions for the same enrollment are serialized with a
// version compare-and-swap: the UPDATE only applies when the version is
// unchanged since the read, otherwise the enrollment is re-read and the fold
// is retried on fresh state.
func ApplyQuizResult(db *gorm.DB, userID uint, quiz *courseModels.Quiz, result *QuizAttemptResult) (*courseModels.Enrollment, error) {
	moduleCount, err := courseModels.ModuleCountFor(db, quiz.CourseID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < progressUpdateRetries; attempt++ {
		var enrollment courseModels.Enrollment
		if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, quiz.CourseID).
			First(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotEnrolled
			}
			return nil, err
		}

		wasCompleted := enrollment.Status == courseModels.EnrollmentCompleted

		score := courseModels.QuizScore{
			QuizID:     quiz.ID,
			ModuleKey:  quiz.ModuleKeyOf(),
			Percentage: result.Percentage,
			Passed:     result.Passed,
			AttemptAt:  time.Now(),
		}

		if !result.Passed {
			// Failed attempts are appended for audit visibility and do not
			// replace a previous passing entry for the same quiz
			if existing := findScore(enrollment.ScoreHistory, quiz.ID); existing == nil || !existing.Passed {
				enrollment.UpsertScore(score)
			} else {
				enrollment.ScoreHistory = append(enrollment.ScoreHistory, score)
			}
		} else {
			enrollment.UpsertScore(score)
			if !enrollment.HasModule(quiz.ModuleKeyOf()) {
				enrollment.CompletedModules = append(enrollment.CompletedModules, quiz.ModuleKeyOf())
			}
		}

		if moduleCount > 0 {
			enrollment.Progress = 100 * float64(len(enrollment.CompletedModules)) / float64(moduleCount)
		}

		// Completion is monotonic: once COMPLETED, later activity never
		// reverts the status or reassigns the certificate
		completedNow := false
		if !wasCompleted && moduleCount > 0 && int64(len(enrollment.CompletedModules)) == moduleCount {
			enrollment.Status = courseModels.EnrollmentCompleted
			enrollment.CertificateNumber = MintCertificateNumber()
			now := time.Now()
			enrollment.CompletedAt = &now
			completedNow = true
		}

		res := db.Model(&courseModels.Enrollment{}).
			Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
			Updates(map[string]interface{}{
				"status":             enrollment.Status,
				"progress":           enrollment.Progress,
				"completed_modules":  enrollment.CompletedModules,
				"score_history":      enrollment.ScoreHistory,
				"certificate_number": enrollment.CertificateNumber,
				"completed_at":       enrollment.CompletedAt,
				"version":            enrollment.Version + 1,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// Someone else advanced this enrollment; retry on fresh state
			continue
		}

		enrollment.Version++
		if completedNow {
			events.Emit(events.CourseCompleted{
				EnrollmentID:      enrollment.ID,
				UserID:            enrollment.UserID,
				CourseID:          enrollment.CourseID,
				CertificateNumber: enrollment.CertificateNumber,
				CompletedAt:       *enrollment.CompletedAt,
			})
		}
		return &enrollment, nil
	}

	log.Printf("[PROGRESS] CAS retries exhausted for user %d course %d", userID, quiz.CourseID)
	return nil, ErrProgressConflict
}

// CheckModuleAccess enforces module gating: module i is open only when module
// i-1 is completed; module 0 is always open.
func CheckModuleAccess(enrollment *courseModels.Enrollment, moduleIndex int) error {
	if moduleIndex <= 0 {
		return nil
	}
	if !enrollment.HasModule(courseModels.ModuleKey(moduleIndex - 1)) {
		return ErrModuleLocked
	}
	return nil
}

func findScore(history []courseModels.QuizScore, quizID uint) *courseModels.QuizScore {
	for i := range history {
		if history[i].QuizID == quizID {
			return &history[i]
		}
	}
	return nil
}
