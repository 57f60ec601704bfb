package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schooldesk/substitute-api/internal/bridge"
	"github.com/schooldesk/substitute-api/internal/models"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

type smsRepository interface {
	History(ctx context.Context) ([]models.SMSHistoryEntry, error)
	Append(ctx context.Context, entries ...models.SMSHistoryEntry) error
	UpdateStatus(ctx context.Context, id string, status models.SMSStatus, failureReason string) error
}

// SMSRecipient is one target of a send request.
type SMSRecipient struct {
	TeacherID   int    `json:"teacherId"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// SMSSendResult reports one recipient's outcome.
type SMSSendResult struct {
	EntryID     string           `json:"entryId,omitempty"`
	Name        string           `json:"name"`
	PhoneNumber string           `json:"phoneNumber,omitempty"`
	Status      models.SMSStatus `json:"status"`
	DeepLink    string           `json:"deepLink,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// SMSService dispatches notifications to substitutes and keeps the
// append-only send history.
type SMSService struct {
	repo      smsRepository
	bridge    *bridge.Client
	sendDelay time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
	sleep     func(time.Duration)
}

// NewSMSService constructs an SMSService. sendDelay spaces consecutive
// sends so the device composer is not flooded.
func NewSMSService(repo smsRepository, br *bridge.Client, sendDelay time.Duration, metrics *MetricsService, logger *zap.Logger) *SMSService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMSService{
		repo:      repo,
		bridge:    br,
		sendDelay: sendDelay,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// DeepLink builds the sms: URI that opens the device composer prefilled.
func DeepLink(phone, message string) string {
	return fmt.Sprintf("sms:%s?body=%s", phone, url.QueryEscape(message))
}

// SendMessages dispatches one message to each recipient. Recipients without
// a phone number are skipped with a failed result. Every attempted recipient
// gets a history entry created pending and settled from the actual outcome;
// one recipient failing never stops the rest.
func (s *SMSService) SendMessages(ctx context.Context, recipients []SMSRecipient, message string, method models.SMSMethod) ([]SMSSendResult, error) {
	if message == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message text is required")
	}
	if len(recipients) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one recipient is required")
	}
	if method == "" {
		method = models.SMSMethodNative
	}
	if method == models.SMSMethodBridge && !s.bridge.Available() {
		return nil, appErrors.ErrBridgeUnavailable
	}

	results := make([]SMSSendResult, 0, len(recipients))
	for i, r := range recipients {
		if i > 0 && s.sendDelay > 0 {
			s.sleep(s.sendDelay)
		}
		results = append(results, s.sendOne(ctx, r, message, method))
	}
	return results, nil
}

func (s *SMSService) sendOne(ctx context.Context, r SMSRecipient, message string, method models.SMSMethod) SMSSendResult {
	if r.PhoneNumber == "" {
		return SMSSendResult{Name: r.Name, Status: models.SMSFailed, Error: "no phone number on file"}
	}

	entry := models.SMSHistoryEntry{
		ID:          uuid.NewString(),
		TeacherID:   strconv.Itoa(r.TeacherID),
		TeacherName: r.Name,
		PhoneNumber: r.PhoneNumber,
		Message:     message,
		Status:      models.SMSPending,
		Method:      method,
		SentAt:      s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to record sms entry", zap.Error(err))
		return SMSSendResult{Name: r.Name, PhoneNumber: r.PhoneNumber, Status: models.SMSFailed, Error: "failed to record message"}
	}

	result := SMSSendResult{EntryID: entry.ID, Name: r.Name, PhoneNumber: r.PhoneNumber}
	var sendErr error
	switch method {
	case models.SMSMethodBridge:
		sendErr = s.bridge.SendSMS(ctx, r.PhoneNumber, message)
	case models.SMSMethodNative:
		// the caller opens the composer; the deep link is the delivery
		result.DeepLink = DeepLink(r.PhoneNumber, message)
	case models.SMSMethodAPI:
		// record-only channel
	default:
		sendErr = appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown send method %q", method))
	}

	status := models.SMSSent
	reason := ""
	if sendErr != nil {
		status = models.SMSFailed
		reason = sendErr.Error()
		result.Error = reason
	}
	if err := s.repo.UpdateStatus(ctx, entry.ID, status, reason); err != nil {
		s.logger.Error("failed to settle sms entry", zap.String("entryId", entry.ID), zap.Error(err))
		status = models.SMSFailed
	}
	result.Status = status
	s.metrics.ObserveSMS(method, status)
	return result
}

// History returns the full send history in append order.
func (s *SMSService) History(ctx context.Context) ([]models.SMSHistoryEntry, error) {
	entries, err := s.repo.History(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sms history")
	}
	if entries == nil {
		entries = []models.SMSHistoryEntry{}
	}
	return entries, nil
}

// Resend dispatches a past message again as a brand-new entry. The original
// entry is never modified.
func (s *SMSService) Resend(ctx context.Context, entryID string) (SMSSendResult, error) {
	entries, err := s.History(ctx)
	if err != nil {
		return SMSSendResult{}, err
	}
	for _, e := range entries {
		if e.ID == entryID {
			teacherID, _ := strconv.Atoi(e.TeacherID)
			r := SMSRecipient{TeacherID: teacherID, Name: e.TeacherName, PhoneNumber: e.PhoneNumber}
			method := e.Method
			if method == "" {
				method = models.SMSMethodNative
			}
			return s.sendOne(ctx, r, e.Message, method), nil
		}
	}
	return SMSSendResult{}, appErrors.Clone(appErrors.ErrNotFound, "sms history entry not found")
}

// Record logs messages sent outside the server, for example straight from
// the device composer.
func (s *SMSService) Record(ctx context.Context, recipients []SMSRecipient, message string, method models.SMSMethod) (int, error) {
	if message == "" || len(recipients) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "message and recipients are required")
	}
	if method == "" {
		method = models.SMSMethodNative
	}
	entries := make([]models.SMSHistoryEntry, 0, len(recipients))
	for _, r := range recipients {
		entries = append(entries, models.SMSHistoryEntry{
			ID:          uuid.NewString(),
			TeacherID:   strconv.Itoa(r.TeacherID),
			TeacherName: r.Name,
			PhoneNumber: r.PhoneNumber,
			Message:     message,
			Status:      models.SMSSent,
			Method:      method,
			SentAt:      s.now().UTC().Format(time.RFC3339),
		})
	}
	if err := s.repo.Append(ctx, entries...); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record messages")
	}
	return len(entries), nil
}
