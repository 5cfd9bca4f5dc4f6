package courseValidator

import (
	controllers "edumart/controllers/course"
	"edumart/middleware"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func parseIDParam(c *fiber.Ctx, name string) (int, bool) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CourseID validates the :id route param
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// CourseAndModule validates the :course_id and :module_index route params.
// Module index is zero-based, so 0 is valid.
func CourseAndModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		moduleIndexStr := strings.TrimSpace(c.Params("module_index"))
		moduleIndex, err := strconv.Atoi(moduleIndexStr)
		if err != nil || moduleIndex < 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module index!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("moduleIndex", moduleIndex)
		return c.Next()
	}
}

// SubmitQuiz validates a quiz submission body
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers []controllers.SubmittedAnswer `json:"answers"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		// An empty answers array is a valid submission; unanswered questions
		// simply score zero
		errors := make(map[string]string)

		for _, a := range reqData.Answers {
			if a.QuestionID == 0 {
				errors["answers"] = "Each answer must reference a question!"
				break
			}
			if a.SelectedOption < 0 {
				errors["answers"] = "Selected option cannot be negative!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizSubmission", reqData.Answers)
		return c.Next()
	}
}

// CreateCourse validates the trainer's course-creation body
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.CreateCourseRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, ve := range err.(validator.ValidationErrors) {
				errors[ve.Field()] = "Invalid value for " + ve.Field() + "!"
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateCourse", reqData)
		return c.Next()
	}
}

// CreateModule validates the trainer's module-creation body
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.CreateModuleRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, ve := range err.(validator.ValidationErrors) {
				errors[ve.Field()] = "Invalid value for " + ve.Field() + "!"
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateModule", reqData)
		return c.Next()
	}
}

// CreateQuiz validates the trainer's quiz-creation body
func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.CreateQuizRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, ve := range err.(validator.ValidationErrors) {
				errors[ve.Field()] = "Invalid value for " + ve.Field() + "!"
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		// Each correct option must point inside its question's options
		errors := make(map[string]string)
		for i, q := range reqData.Questions {
			if q.CorrectOption >= len(q.Options) {
				errors["questions"] = "Correct option out of range for question " + strconv.Itoa(i+1) + "!"
				break
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateQuiz", reqData)
		return c.Next()
	}
}
