package course

import (
	"fmt"

	"gorm.io/gorm"
)

// Module represents a section/module within a course
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Module order in course, zero-based
	IsDeleted   bool   `gorm:"default:false"`
}

// ModuleKey returns the stable progress-tracking key for a module position
func ModuleKey(orderIndex int) string {
	return fmt.Sprintf("module-%d", orderIndex)
}

// Key returns the module's own progress-tracking key
func (m *Module) Key() string {
	return ModuleKey(m.OrderIndex)
}
