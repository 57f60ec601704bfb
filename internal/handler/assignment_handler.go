package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schooldesk/substitute-api/internal/service"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
	"github.com/schooldesk/substitute-api/pkg/response"
)

// AssignmentHandler exposes substitute assignment endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary Substitute assignments, optionally for one date
// @Tags Assignments
// @Produce json
// @Param date query string false "Date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /substitute-assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.assignments.Assignments(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Availability godoc
// @Summary Substitutes annotated with availability for a date
// @Tags Assignments
// @Produce json
// @Param date query string true "Date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /substitute-availability [get]
func (h *AssignmentHandler) Availability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	out, err := h.assignments.Availability(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

type autoAssignRequest struct {
	Date string `json:"date" binding:"required"`
}

// AutoAssign godoc
// @Summary Automatically book substitutes for all uncovered periods
// @Tags Assignments
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /autoassign [post]
func (h *AssignmentHandler) AutoAssign(c *gin.Context) {
	var req autoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	created, warnings, err := h.assignments.AutoAssign(c.Request.Context(), req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"assignments": created, "warnings": warnings}, nil)
}

// Warnings godoc
// @Summary Stored auto-assign warnings for a date
// @Tags Assignments
// @Produce json
// @Param date query string true "Date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /substitute-warnings [get]
func (h *AssignmentHandler) Warnings(c *gin.Context) {
	warnings, err := h.assignments.Warnings(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, warnings, nil)
}

// Verify godoc
// @Summary Audit assignments for double bookings and workload breaches
// @Tags Assignments
// @Produce json
// @Param date query string false "Date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /verify-assignments [get]
func (h *AssignmentHandler) Verify(c *gin.Context) {
	report, err := h.assignments.Verify(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Reset godoc
// @Summary Clear all assignments
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reset-assignments [post]
func (h *AssignmentHandler) Reset(c *gin.Context) {
	if err := h.assignments.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "assignments cleared"}, nil)
}
