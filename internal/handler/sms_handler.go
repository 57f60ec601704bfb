package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schooldesk/substitute-api/internal/bridge"
	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/service"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
	"github.com/schooldesk/substitute-api/pkg/response"
)

// SMSHandler exposes notification dispatch endpoints.
type SMSHandler struct {
	sms    *service.SMSService
	bridge *bridge.Client
	outbox *bridge.QueueHost
}

// NewSMSHandler constructs SMSHandler. outbox may be nil when no host is
// attached.
func NewSMSHandler(sms *service.SMSService, br *bridge.Client, outbox *bridge.QueueHost) *SMSHandler {
	return &SMSHandler{sms: sms, bridge: br, outbox: outbox}
}

type sendMessagesRequest struct {
	Recipients []service.SMSRecipient `json:"recipients" binding:"required"`
	Message    string                 `json:"message" binding:"required"`
	Method     models.SMSMethod       `json:"method"`
}

// Send godoc
// @Summary Dispatch a message to each recipient
// @Tags SMS
// @Accept json
// @Produce json
// @Param payload body sendMessagesRequest true "Send payload"
// @Success 200 {object} response.Envelope
// @Router /send-messages [post]
func (h *SMSHandler) Send(c *gin.Context) {
	var req sendMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "recipients and message are required"))
		return
	}
	results, err := h.sms.SendMessages(c.Request.Context(), req.Recipients, req.Message, req.Method)
	if err != nil {
		response.Error(c, err)
		return
	}
	sent := 0
	for _, r := range results {
		if r.Status == models.SMSSent {
			sent++
		}
	}
	response.JSON(c, http.StatusOK, gin.H{"results": results, "sent": sent, "failed": len(results) - sent}, nil)
}

// History godoc
// @Summary Full SMS send history
// @Tags SMS
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sms-history [get]
func (h *SMSHandler) History(c *gin.Context) {
	entries, err := h.sms.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Resend godoc
// @Summary Resend a past message as a new history entry
// @Tags SMS
// @Produce json
// @Param id path string true "History entry ID"
// @Success 200 {object} response.Envelope
// @Router /sms-history/{id}/resend [post]
func (h *SMSHandler) Resend(c *gin.Context) {
	result, err := h.sms.Resend(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Record godoc
// @Summary Log messages sent outside the server
// @Tags SMS
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /record-sms [post]
func (h *SMSHandler) Record(c *gin.Context) {
	var req sendMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "recipients and message are required"))
		return
	}
	count, err := h.sms.Record(c.Request.Context(), req.Recipients, req.Message, req.Method)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"recorded": count})
}

// DeviceInfo godoc
// @Summary Query the native host for device information
// @Tags SMS
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /device-info [get]
func (h *SMSHandler) DeviceInfo(c *gin.Context) {
	info, err := h.bridge.GetDeviceInfo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// BridgeMessage godoc
// @Summary Deliver a host reply to the bridge
// @Tags SMS
// @Accept json
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /bridge/messages [post]
func (h *SMSHandler) BridgeMessage(c *gin.Context) {
	var env bridge.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid bridge envelope"))
		return
	}
	h.bridge.HandleMessage(env)
	response.JSON(c, http.StatusAccepted, gin.H{"accepted": true}, nil)
}

// BridgeOutbox godoc
// @Summary Drain queued envelopes destined for the native host
// @Tags SMS
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bridge/outbox [get]
func (h *SMSHandler) BridgeOutbox(c *gin.Context) {
	if h.outbox == nil {
		response.Error(c, appErrors.ErrBridgeUnavailable)
		return
	}
	response.JSON(c, http.StatusOK, h.outbox.Drain(), nil)
}
