package courseValidator

import (
	"net/http/httptest"
	"strings"
	"testing"

	controllers "edumart/controllers/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submissionApp() *fiber.App {
	app := fiber.New()
	app.Post("/submit", SubmitQuiz(), func(c *fiber.Ctx) error {
		answers, _ := c.Locals("validatedQuizSubmission").([]controllers.SubmittedAnswer)
		return c.JSON(fiber.Map{"count": len(answers)})
	})
	return app
}

func postSubmission(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestSubmitQuizAllowsEmptySubmission(t *testing.T) {
	app := submissionApp()

	// A blank attempt must reach the grader and score zero, not be rejected
	assert.Equal(t, fiber.StatusOK, postSubmission(t, app, `{"answers":[]}`))
	assert.Equal(t, fiber.StatusOK, postSubmission(t, app, `{}`))
}

func TestSubmitQuizValidAnswers(t *testing.T) {
	app := submissionApp()

	status := postSubmission(t, app, `{"answers":[{"questionId":1,"selectedOption":2}]}`)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestSubmitQuizRejectsMalformedAnswers(t *testing.T) {
	app := submissionApp()

	// Missing question reference
	assert.Equal(t, fiber.StatusUnprocessableEntity,
		postSubmission(t, app, `{"answers":[{"questionId":0,"selectedOption":1}]}`))

	// Negative option index
	assert.Equal(t, fiber.StatusUnprocessableEntity,
		postSubmission(t, app, `{"answers":[{"questionId":1,"selectedOption":-1}]}`))

	// Not JSON at all
	assert.Equal(t, fiber.StatusBadRequest, postSubmission(t, app, `not-json`))
}
