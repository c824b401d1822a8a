package handlers

import (
	"errors"
	"net/http"

	"progress-service/internal/middleware"
	"progress-service/internal/models"
	"progress-service/internal/service"
	"progress-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	Enrollment *service.EnrollmentService
	Completion *service.CompletionService
	Progress   *service.ProgressService
}

func NewProgressHandler(enrollment *service.EnrollmentService, completion *service.CompletionService, progress *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		Enrollment: enrollment,
		Completion: completion,
		Progress:   progress,
	}
}

// statusFromError maps the service error taxonomy onto HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Enroll enrolls the caller (or, for group leaders, a listed member) into
// the course. Group enrollment carries the company name and creates the
// group on first use.
func (h *ProgressHandler) Enroll(c *gin.Context) {
	var req struct {
		CourseID    string `json:"courseId"`
		IsGroup     bool   `json:"isGroup"`
		CompanyName string `json:"companyName"`
		IsLeader    bool   `json:"isLeader"`
		UserID      string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	outcome, err := h.Enrollment.Enroll(c.Request.Context(), middleware.UserID(c), req.CourseID, service.EnrollOptions{
		IsGroup:    req.IsGroup,
		GroupName:  req.CompanyName,
		IsLeader:   req.IsLeader,
		OnBehalfOf: req.UserID,
	})
	if err != nil {
		utils.ErrorResponse(c, statusFromError(err), "Enrollment failed", err)
		return
	}

	message := "Enrolled successfully"
	if outcome.AlreadyEnrolled || outcome.AlreadyCompleted {
		message = "Already enrolled"
	}
	utils.SuccessResponse(c, message, gin.H{
		"userId":   outcome.UserID,
		"courseId": outcome.CourseID,
		"groupId":  outcome.GroupID,
	})
}

// CompleteLesson marks a lesson as finished for the caller.
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	var req struct {
		CourseID string `json:"courseId"`
		LessonID string `json:"lessonId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.Completion.CompleteLesson(c.Request.Context(), middleware.UserID(c), req.CourseID, req.LessonID); err != nil {
		utils.ErrorResponse(c, statusFromError(err), "Lesson completion failed", err)
		return
	}
	utils.SuccessResponse(c, "Lesson completed", gin.H{
		"courseId": req.CourseID,
		"lessonId": req.LessonID,
	})
}

// SubmitQuiz grades the submitted answers. A failing score is a normal
// 200 response with passed=false.
func (h *ProgressHandler) SubmitQuiz(c *gin.Context) {
	var req struct {
		CourseID string            `json:"courseId"`
		QuizID   string            `json:"quizId"`
		Answers  map[string]string `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	submission, err := h.Completion.SubmitQuiz(c.Request.Context(), middleware.UserID(c), req.CourseID, req.QuizID, req.Answers)
	if err != nil {
		utils.ErrorResponse(c, statusFromError(err), "Quiz submission failed", err)
		return
	}

	message := "Quiz passed"
	if !submission.Passed {
		message = "Quiz score below the pass threshold"
	}
	utils.SuccessResponse(c, message, gin.H{
		"score":           submission.Score,
		"correct":         submission.Correct,
		"total":           submission.Total,
		"passed":          submission.Passed,
		"courseCompleted": submission.CourseCompleted,
	})
}

// CompleteCourse is the explicit completion endpoint for courses that are
// not gated by quizzes.
func (h *ProgressHandler) CompleteCourse(c *gin.Context) {
	var req struct {
		CourseID string `json:"courseId"`
		UserID   string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.Completion.CompleteCourse(c.Request.Context(), middleware.UserID(c), req.CourseID, req.UserID); err != nil {
		utils.ErrorResponse(c, statusFromError(err), "Course completion failed", err)
		return
	}
	utils.SuccessResponse(c, "Course completed", gin.H{"courseId": req.CourseID})
}

// FetchProgress returns the caller's full progress summary.
func (h *ProgressHandler) FetchProgress(c *gin.Context) {
	summary, err := h.Progress.FetchProgress(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.ErrorResponse(c, statusFromError(err), "Failed to fetch progress", err)
		return
	}
	utils.SuccessResponse(c, "Progress fetched", summary)
}

// FetchUserProgress returns another user's summary, admin only.
func (h *ProgressHandler) FetchUserProgress(c *gin.Context) {
	if !middleware.IsAdmin(c) {
		utils.ErrorResponse(c, http.StatusForbidden, "Admin permission required", nil)
		return
	}
	summary, err := h.Progress.FetchProgress(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.ErrorResponse(c, statusFromError(err), "Failed to fetch progress", err)
		return
	}
	utils.SuccessResponse(c, "Progress fetched", summary)
}

// RegisterRoutes mounts the progress endpoints on the protected group.
func (h *ProgressHandler) RegisterRoutes(r *gin.Engine) {
	protected := r.Group("/protected/progress", middleware.RequireUser())
	{
		protected.GET("/me", h.FetchProgress)
		protected.GET("/user/:userId", h.FetchUserProgress)
		protected.POST("/enroll", h.Enroll)
		protected.POST("/lesson/complete", h.CompleteLesson)
		protected.POST("/course/complete", h.CompleteCourse)
		protected.POST("/quiz/submit", h.SubmitQuiz)
	}
}
