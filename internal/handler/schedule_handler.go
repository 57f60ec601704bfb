package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/service"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
	"github.com/schooldesk/substitute-api/pkg/response"
)

// ScheduleHandler exposes timetable and period configuration endpoints.
type ScheduleHandler struct {
	timetable *service.TimetableService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(timetable *service.TimetableService) *ScheduleHandler {
	return &ScheduleHandler{timetable: timetable}
}

// Process godoc
// @Summary Rebuild schedule indexes from the timetable file
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /process-timetables [post]
func (h *ScheduleHandler) Process(c *gin.Context) {
	count, err := h.timetable.Process(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"entries": count}, nil)
}

// Schedules godoc
// @Summary Flat timetable entries
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) Schedules(c *gin.Context) {
	entries, err := h.timetable.Schedules(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// TeacherSchedule godoc
// @Summary One teacher's weekly schedule
// @Tags Schedules
// @Produce json
// @Param name path string true "Teacher name"
// @Success 200 {object} response.Envelope
// @Router /teacher-schedule/{name} [get]
func (h *ScheduleHandler) TeacherSchedule(c *gin.Context) {
	periods, err := h.timetable.TeacherSchedule(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// DaySchedule godoc
// @Summary All slots for one weekday
// @Tags Schedules
// @Produce json
// @Param day path string true "Weekday"
// @Success 200 {object} response.Envelope
// @Router /schedule/{day} [get]
func (h *ScheduleHandler) DaySchedule(c *gin.Context) {
	day, ok := models.ParseWeekday(c.Param("day"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown weekday"))
		return
	}
	slots, err := h.timetable.DaySchedule(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// PeriodSchedule godoc
// @Summary Slots for one weekday and period
// @Tags Schedules
// @Produce json
// @Param day query string true "Weekday"
// @Param period query int true "Period number"
// @Success 200 {object} response.Envelope
// @Router /period-schedules [get]
func (h *ScheduleHandler) PeriodSchedule(c *gin.Context) {
	day, ok := models.ParseWeekday(c.Query("day"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown weekday"))
		return
	}
	period, err := strconv.Atoi(c.Query("period"))
	if err != nil || period < models.MinPeriod || period > models.MaxPeriod {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "period must be between 1 and 8"))
		return
	}
	slots, err := h.timetable.PeriodSchedule(c.Request.Context(), day, period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ClassSchedule godoc
// @Summary One class's weekly schedule
// @Tags Schedules
// @Produce json
// @Param class query string true "Class name"
// @Success 200 {object} response.Envelope
// @Router /class-schedules [get]
func (h *ScheduleHandler) ClassSchedule(c *gin.Context) {
	class := c.Query("class")
	if class == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class is required"))
		return
	}
	week, err := h.timetable.ClassSchedule(c.Request.Context(), class)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// GetPeriodConfig godoc
// @Summary Period time configuration
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /period-config [get]
func (h *ScheduleHandler) GetPeriodConfig(c *gin.Context) {
	periods, err := h.timetable.PeriodConfig(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// SetPeriodConfig godoc
// @Summary Replace the period time configuration
// @Tags Schedules
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /period-config [post]
func (h *ScheduleHandler) SetPeriodConfig(c *gin.Context) {
	var periods []models.PeriodConfig
	if err := c.ShouldBindJSON(&periods); err != nil || len(periods) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid period configuration"))
		return
	}
	for _, p := range periods {
		if p.PeriodNumber < 1 || p.StartTime == "" || p.EndTime == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "each period needs a number, start and end time"))
			return
		}
	}
	if err := h.timetable.SavePeriodConfig(c.Request.Context(), periods); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}
