package controllers

// CreateCourseRequest is the trainer's course-creation body
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description"`
	Duration    int64  `json:"duration" validate:"gte=0"`
	PriceAmount int64  `json:"priceAmount" validate:"gte=0"` // minor units
}

// CreateModuleRequest is the trainer's module-creation body
type CreateModuleRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description"`
}

// QuizQuestionRequest is one question in a quiz-creation body
type QuizQuestionRequest struct {
	QuestionText  string   `json:"questionText" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectOption int      `json:"correctOption" validate:"gte=0"`
	Points        int      `json:"points"`
}

// CreateQuizRequest is the trainer's quiz-creation body
type CreateQuizRequest struct {
	Title        string                `json:"title" validate:"required"`
	PassingScore float64               `json:"passingScore" validate:"gte=0,lte=100"`
	Questions    []QuizQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}
