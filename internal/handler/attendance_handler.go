package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/service"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
	"github.com/schooldesk/substitute-api/pkg/export"
	"github.com/schooldesk/substitute-api/pkg/response"
)

// AttendanceHandler exposes the attendance log and its reports.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	absences   *service.AbsenceService
	roster     *service.RosterService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, absences *service.AbsenceService, roster *service.RosterService) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		absences:   absences,
		roster:     roster,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
	}
}

// Record godoc
// @Summary Append attendance marks
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid attendance payload"))
		return
	}
	count, err := h.attendance.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"recorded": count})
}

// List godoc
// @Summary Attendance records, optionally for one date
// @Tags Attendance
// @Produce json
// @Param date query string false "Date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	date := c.Query("date")
	var records []models.AttendanceRecord
	var err error
	if date == "" {
		records, err = h.attendance.All(c.Request.Context())
	} else {
		records, err = h.attendance.ByDate(c.Request.Context(), date)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Report godoc
// @Summary Per-teacher attendance summary over a date range
// @Tags Attendance
// @Produce json
// @Param from query string false "Start date YYYY-MM-DD"
// @Param to query string false "End date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /attendance/report [get]
func (h *AttendanceHandler) Report(c *gin.Context) {
	rows, err := h.attendance.Report(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Attendance report as CSV or PDF
// @Tags Attendance
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /attendance/report/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	ds, err := h.attendance.ExportDataset(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}

	name := fmt.Sprintf("attendance-report-%s", time.Now().Format("2006-01-02"))
	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		data, err := h.pdf.Render(ds, "Attendance Report")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", name))
		c.Data(http.StatusOK, "application/pdf", data)
	case "csv":
		data, err := h.csv.Render(ds)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
		c.Data(http.StatusOK, "text/csv", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

type markAttendanceRequest struct {
	TeacherID int    `json:"teacherId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Period    int    `json:"period"`
	Notes     string `json:"notes"`
}

// Mark godoc
// @Summary Mark one teacher's attendance and sync the absence registry
// @Tags Attendance
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mark-attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be present or absent"))
		return
	}

	teacher, err := h.roster.Get(c.Request.Context(), req.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}

	_, err = h.attendance.Record(c.Request.Context(), service.RecordAttendanceRequest{
		Date: req.Date,
		Records: []models.AttendanceRecord{{
			Date:        req.Date,
			TeacherName: teacher.Name,
			Status:      status,
			Period:      req.Period,
			Notes:       req.Notes,
		}},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// the registry mirrors the mark: absent adds, present removes
	if err := h.absences.Update(c.Request.Context(), teacher.ID, req.Date, status == models.AttendanceAbsent); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"teacherId": teacher.ID, "date": req.Date, "status": status}, nil)
}
