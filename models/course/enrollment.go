package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnrollmentStatus defines the lifecycle state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentDropped   EnrollmentStatus = "DROPPED" // set by admin action only
)

// QuizScore is one entry in an enrollment's score history, keyed by quiz ID.
// A retried quiz replaces its existing entry instead of appending a duplicate.
type QuizScore struct {
	QuizID     uint      `json:"quiz_id"`
	ModuleKey  string    `json:"module_key"`
	Percentage float64   `json:"percentage"`
	Passed     bool      `json:"passed"`
	AttemptAt  time.Time `json:"attempt_at"`
}

// Enrollment tracks a user's entitlement to a course and progress through it.
// Created exactly once per (user, course) pair by a captured payment; mutated
// only through the progress state machine; never deleted in normal operation.
type Enrollment struct {
	gorm.Model
	UserID   uint             `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_course"`
	CourseID uint             `json:"course_id" gorm:"index;not null;uniqueIndex:idx_user_course"`
	Status   EnrollmentStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	Progress float64          `json:"progress" gorm:"default:0"` // completion percentage (0-100)

	// CompletedModules only ever grows; keys are never removed.
	CompletedModules datatypes.JSONSlice[string]    `json:"completed_modules"`
	ScoreHistory     datatypes.JSONSlice[QuizScore] `json:"score_history"`

	// CertificateNumber is minted once, on the ACTIVE -> COMPLETED edge
	CertificateNumber string     `json:"certificate_number" gorm:"type:varchar(100)"`
	CompletedAt       *time.Time `json:"completed_at"`

	// Version guards concurrent progress updates (compare-and-swap)
	Version   int64 `json:"-" gorm:"default:0"`
	IsDeleted bool  `gorm:"default:false"`
}

// HasModule reports whether the module key is already completed
func (e *Enrollment) HasModule(key string) bool {
	for _, k := range e.CompletedModules {
		if k == key {
			return true
		}
	}
	return false
}

// UpsertScore replaces the history entry for the score's quiz, or appends it.
// Order of first attempts is preserved.
func (e *Enrollment) UpsertScore(score QuizScore) {
	for i, s := range e.ScoreHistory {
		if s.QuizID == score.QuizID {
			e.ScoreHistory[i] = score
			return
		}
	}
	e.ScoreHistory = append(e.ScoreHistory, score)
}
