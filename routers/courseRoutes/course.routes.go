package courseRoutes

import (
	controllers "edumart/controllers/course"
	"edumart/middleware"
	validators "edumart/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/course")

	// Catalog (published courses)
	userGroup.Get("/list", middleware.JWTMiddleware, controllers.GetAllCourses)
	userGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)

	// Enrollment projection
	userGroup.Get("/:id/enrollment", middleware.JWTMiddleware, validators.CourseID(), controllers.GetEnrollment)

	// Quizzes
	userGroup.Get("/:course_id/module/:module_index/quiz", middleware.JWTMiddleware, validators.CourseAndModule(), controllers.GetModuleQuiz)
	userGroup.Post("/:course_id/module/:module_index/quiz/submit", middleware.JWTMiddleware, validators.CourseAndModule(), validators.SubmitQuiz(), controllers.SubmitQuiz)

	// Certificate data for the renderer
	userGroup.Get("/:id/certificate", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCertificate)

	// User enrollments
	userEnrollGroup := app.Group("/user")
	userEnrollGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollments)
}

// SetupAdminCourseRoutes sets up trainer/admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")

	adminGroup.Post("/create", middleware.JWTMiddleware, validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Post("/:id/publish", middleware.JWTMiddleware, validators.CourseID(), controllers.AdminPublishCourse)
	adminGroup.Post("/:id/module", middleware.JWTMiddleware, validators.CourseID(), validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Post("/:course_id/module/:module_index/quiz", middleware.JWTMiddleware, validators.CourseAndModule(), validators.CreateQuiz(), controllers.AdminCreateQuiz)
}
