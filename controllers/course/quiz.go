package controllers

import (
	"errors"

	"edumart/database"
	"edumart/middleware"
	"edumart/models"
	courseModels "edumart/models/course"

	"github.com/gofiber/fiber/v2"
)

// GetModuleQuiz returns a module's quiz with the correct-answer fields
// stripped. Requires an enrollment and an unlocked module.
func GetModuleQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleIndex := c.Locals("moduleIndex").(int)

	// Check enrollment
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	if err := CheckModuleAccess(&enrollment, moduleIndex); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Complete the previous module to unlock this one!", nil)
	}

	var quiz courseModels.Quiz
	if err := database.Database.Db.
		Preload("Questions", "is_deleted = ?", false).
		Where("course_id = ? AND module_index = ? AND is_deleted = ? AND is_published = ?", courseID, moduleIndex, false, true).
		First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found for this module!", nil)
	}

	// Strip answers before the quiz leaves the server
	type questionView struct {
		ID           uint     `json:"id"`
		QuestionText string   `json:"question_text"`
		Options      []string `json:"options"`
		Points       int      `json:"points"`
		OrderIndex   int      `json:"order_index"`
	}

	questions := make([]questionView, len(quiz.Questions))
	for i, q := range quiz.Questions {
		questions[i] = questionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      q.Options,
			Points:       q.Points,
			OrderIndex:   q.OrderIndex,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"quiz_id":       quiz.ID,
		"title":         quiz.Title,
		"module_index":  quiz.ModuleIndex,
		"passing_score": quiz.PassingScore,
		"questions":     questions,
	})
}

// SubmitQuiz grades a quiz submission and folds the result into the user's
// enrollment progress.
func SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleIndex := c.Locals("moduleIndex").(int)

	answers, ok := c.Locals("validatedQuizSubmission").([]SubmittedAnswer)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check enrollment and gating before touching the quiz
	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	if err := CheckModuleAccess(&enrollment, moduleIndex); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Complete the previous module to unlock this one!", nil)
	}

	var quiz courseModels.Quiz
	if err := db.
		Preload("Questions", "is_deleted = ?", false).
		Where("course_id = ? AND module_index = ? AND is_deleted = ? AND is_published = ?", courseID, moduleIndex, false, true).
		First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found for this module!", nil)
	}

	result, err := GradeQuiz(&quiz, answers)
	if err != nil {
		if errors.Is(err, ErrEmptyQuiz) {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Quiz has no questions!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade quiz!", nil)
	}

	updated, err := ApplyQuizResult(db, userID, &quiz, result)
	if err != nil {
		if errors.Is(err, ErrNotEnrolled) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
		}
		if errors.Is(err, ErrProgressConflict) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Progress was updated concurrently. Please retry!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", fiber.Map{
		"result": result,
		"enrollment": fiber.Map{
			"status":             updated.Status,
			"progress":           updated.Progress,
			"completed_modules":  updated.CompletedModules,
			"certificate_number": updated.CertificateNumber,
		},
	})
}
