package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schooldesk/substitute-api/internal/service"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
	"github.com/schooldesk/substitute-api/pkg/response"
)

// AbsenceHandler exposes the absence registry.
type AbsenceHandler struct {
	absences    *service.AbsenceService
	assignments *service.AssignmentService
}

// NewAbsenceHandler constructs AbsenceHandler.
func NewAbsenceHandler(absences *service.AbsenceService, assignments *service.AssignmentService) *AbsenceHandler {
	return &AbsenceHandler{absences: absences, assignments: assignments}
}

// List godoc
// @Summary Absence entries, optionally for one date
// @Tags Absences
// @Produce json
// @Param date query string false "Date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /absent-teachers [get]
func (h *AbsenceHandler) List(c *gin.Context) {
	entries, err := h.absences.List(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Count godoc
// @Summary Total absence entry count
// @Tags Absences
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /absent-teachers-count [get]
func (h *AbsenceHandler) Count(c *gin.Context) {
	count, err := h.absences.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

type updateAbsenceRequest struct {
	TeacherID int    `json:"teacherId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	IsAbsent  *bool  `json:"isAbsent" binding:"required"`
}

// Update godoc
// @Summary Mark or unmark a teacher absent
// @Tags Absences
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /absent-teachers [post]
func (h *AbsenceHandler) Update(c *gin.Context) {
	var req updateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "teacherId, date and isAbsent are required"))
		return
	}
	if err := h.absences.Update(c.Request.Context(), req.TeacherID, req.Date, *req.IsAbsent); err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.absences.List(c.Request.Context(), req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

type replaceAbsencesRequest struct {
	Date           string   `json:"date" binding:"required"`
	AbsentTeachers []string `json:"absentTeachers"`
}

// ReplaceFile godoc
// @Summary Replace the absence registry for a date with a name list
// @Tags Absences
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /update-absent-teachers-file [post]
func (h *AbsenceHandler) ReplaceFile(c *gin.Context) {
	var req replaceAbsencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	entries, err := h.absences.ReplaceNames(c.Request.Context(), req.Date, req.AbsentTeachers)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

type assignSubstituteRequest struct {
	SubstituteID int    `json:"substituteId" binding:"required"`
	Date         string `json:"date" binding:"required"`
}

// AssignSubstitute godoc
// @Summary Book a substitute for an absent teacher
// @Tags Absences
// @Accept json
// @Produce json
// @Param id path int true "Absent teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /absent-teachers/{id}/substitute [post]
func (h *AbsenceHandler) AssignSubstitute(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid teacher id"))
		return
	}
	var req assignSubstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "substituteId and date are required"))
		return
	}
	created, err := h.assignments.Assign(c.Request.Context(), id, req.SubstituteID, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, created, nil)
}
