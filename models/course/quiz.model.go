package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz is the assessment for one course module. At most one quiz exists per
// (course, module index) pair and the definition is immutable once published.
type Quiz struct {
	gorm.Model
	CourseID     uint           `json:"course_id" gorm:"index;not null;uniqueIndex:idx_course_module_quiz"`
	ModuleIndex  int            `json:"module_index" gorm:"not null;uniqueIndex:idx_course_module_quiz"`
	Title        string         `json:"title"`
	PassingScore float64        `json:"passing_score" gorm:"default:70"` // percentage threshold
	Questions    []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID"`
	IsPublished  bool           `json:"is_published" gorm:"default:false"`
	IsDeleted    bool           `gorm:"default:false"`
}

// QuizQuestion is a single-choice question within a quiz
type QuizQuestion struct {
	gorm.Model
	QuizID        uint                         `json:"quiz_id" gorm:"index;not null"`
	QuestionText  string                       `json:"question_text" gorm:"type:text"`
	Options       datatypes.JSONSlice[string]  `json:"options"`
	CorrectOption int                          `json:"correct_option"` // zero-based index into Options
	Points        int                          `json:"points" gorm:"default:1"`
	OrderIndex    int                          `json:"order_index" gorm:"default:0"`
	IsDeleted     bool                         `gorm:"default:false"`
}

// ModuleKeyOf returns the progress key of the module this quiz belongs to
func (q *Quiz) ModuleKeyOf() string {
	return ModuleKey(q.ModuleIndex)
}
