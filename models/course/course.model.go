package course

import "gorm.io/gorm"

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	Duration     int64  `json:"duration" gorm:"default:0"`     // duration in hours
	Status       string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	PriceAmount  int64  `json:"price_amount" gorm:"default:0"` // minor units
	Currency     string `json:"currency" gorm:"type:varchar(10);default:'INR'"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`

	// EnrollmentCount is maintained by the enrollment-counter event handler,
	// never written inline by the settlement path.
	EnrollmentCount int64 `json:"enrollment_count" gorm:"default:0"`

	IsDeleted bool `gorm:"default:false"`
}

// ModuleCountFor returns the number of live modules in a course
func ModuleCountFor(db *gorm.DB, courseID uint) (int64, error) {
	var count int64
	err := db.Model(&Module{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&count).Error
	return count, err
}
