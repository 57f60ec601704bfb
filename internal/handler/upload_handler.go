package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schooldesk/substitute-api/internal/service"
	"github.com/schooldesk/substitute-api/internal/store"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
	"github.com/schooldesk/substitute-api/pkg/response"
)

const maxUploadBytes = 5 << 20

// UploadHandler accepts timetable and substitute CSV uploads.
type UploadHandler struct {
	timetable      *service.TimetableService
	roster         *service.RosterService
	store          *store.Store
	substituteFile string
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(timetable *service.TimetableService, roster *service.RosterService, st *store.Store, substituteFile string) *UploadHandler {
	return &UploadHandler{timetable: timetable, roster: roster, store: st, substituteFile: substituteFile}
}

// Upload godoc
// @Summary Upload a timetable or substitute CSV
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param type path string true "timetable or substitute"
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Router /upload/{type} [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	kind := c.Param("type")
	if kind != "timetable" && kind != "substitute" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "upload type must be timetable or substitute"))
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file field is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	if len(content) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "uploaded file is empty"))
		return
	}

	switch kind {
	case "timetable":
		count, err := h.timetable.Upload(c.Request.Context(), content)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"entries": count}, nil)
	case "substitute":
		if err := h.store.WriteFile(h.substituteFile, content); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store substitute file"))
			return
		}
		rows, err := h.store.ReadCSV(h.substituteFile)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to parse substitute file"))
			return
		}
		imported, err := h.roster.ImportSubstitutes(c.Request.Context(), rows)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"imported": imported}, nil)
	}
}
