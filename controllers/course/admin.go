package controllers

import (
	"edumart/database"
	"edumart/middleware"
	"edumart/models"
	courseModels "edumart/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

func requireTrainer(c *fiber.Ctx) (*models.User, bool) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, false
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false AND role IN ?", userID, []string{"TRAINER", "ADMIN"}).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// AdminCreateCourse creates a draft course (Trainer/Admin only)
func AdminCreateCourse(c *fiber.Ctx) error {
	user, ok := requireTrainer(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied! Trainer role required.", nil)
	}

	reqData, ok := c.Locals("validatedCreateCourse").(*CreateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := courseModels.Course{
		Title:       reqData.Title,
		Description: reqData.Description,
		Author:      user.Name,
		Duration:    reqData.Duration,
		PriceAmount: reqData.PriceAmount,
		Currency:    "INR",
		Status:      "DRAFT",
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AdminPublishCourse flips a course to ACTIVE and published
func AdminPublishCourse(c *fiber.Ctx) error {
	if _, ok := requireTrainer(c); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied! Trainer role required.", nil)
	}

	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course.Status = "ACTIVE"
	course.IsPublished = true
	if err := db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}

// AdminCreateModule appends a module to a course
func AdminCreateModule(c *fiber.Ctx) error {
	if _, ok := requireTrainer(c); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied! Trainer role required.", nil)
	}

	courseID := c.Locals("courseID").(int)

	reqData, ok := c.Locals("validatedCreateModule").(*CreateModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Next order index
	moduleCount, err := courseModels.ModuleCountFor(db, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	module := courseModels.Module{
		CourseID:    uint(courseID),
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  int(moduleCount),
	}

	if err := db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminCreateQuiz attaches a quiz to a course module. Only one quiz may exist
// per (course, module index).
func AdminCreateQuiz(c *fiber.Ctx) error {
	if _, ok := requireTrainer(c); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied! Trainer role required.", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleIndex := c.Locals("moduleIndex").(int)

	reqData, ok := c.Locals("validatedCreateQuiz").(*CreateQuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var module courseModels.Module
	if err := db.Where("course_id = ? AND order_index = ? AND is_deleted = ?", courseID, moduleIndex, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var existing courseModels.Quiz
	if err := db.Where("course_id = ? AND module_index = ? AND is_deleted = ?", courseID, moduleIndex, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Module already has a quiz!", nil)
	}

	quiz := courseModels.Quiz{
		CourseID:     uint(courseID),
		ModuleIndex:  moduleIndex,
		Title:        reqData.Title,
		PassingScore: reqData.PassingScore,
		IsPublished:  true,
	}

	tx := db.Begin()
	if err := tx.Create(&quiz).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	for i, q := range reqData.Questions {
		question := courseModels.QuizQuestion{
			QuizID:        quiz.ID,
			QuestionText:  q.QuestionText,
			Options:       datatypes.NewJSONSlice(q.Options),
			CorrectOption: q.CorrectOption,
			Points:        q.Points,
			OrderIndex:    i,
		}
		if err := tx.Create(&question).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz questions!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", fiber.Map{
		"quiz_id":       quiz.ID,
		"module_index":  quiz.ModuleIndex,
		"passing_score": quiz.PassingScore,
		"questions":     len(reqData.Questions),
	})
}
