// Package bridge implements the message protocol between the server and a
// native WebView host. Each outbound request carries a correlation ID; the
// host echoes it back on the reply so concurrent requests cannot cross.
package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

// Message types exchanged with the host.
const (
	TypeSendSMS            = "SEND_SMS"
	TypeGetDeviceInfo      = "GET_DEVICE_INFO"
	TypeDeviceInfoResponse = "DEVICE_INFO_RESPONSE"
	TypeSMSResult          = "SMS_RESULT"
)

// Envelope is the wire frame for every bridge message.
type Envelope struct {
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// SendSMSPayload asks the host to open the device SMS composer.
type SendSMSPayload struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// SMSResult reports the outcome of a SEND_SMS request.
type SMSResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeviceInfo describes the host device.
type DeviceInfo struct {
	Platform   string `json:"platform"`
	Model      string `json:"model,omitempty"`
	OSVersion  string `json:"osVersion,omitempty"`
	AppVersion string `json:"appVersion,omitempty"`
}

// Host delivers an envelope to the native side. Nil or failing hosts make
// the bridge unavailable; callers fall back to other send methods.
type Host interface {
	Post(ctx context.Context, env Envelope) error
}

// Client issues correlated requests over a Host and matches replies.
type Client struct {
	mu      sync.Mutex
	host    Host
	pending map[string]chan Envelope
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient constructs a Client. A zero timeout defaults to five seconds.
func NewClient(host Host, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		host:    host,
		pending: make(map[string]chan Envelope),
		timeout: timeout,
		logger:  logger,
	}
}

// Available reports whether a host is attached.
func (c *Client) Available() bool {
	return c != nil && c.host != nil
}

// SendSMS posts a SEND_SMS request and waits for the host's result.
func (c *Client) SendSMS(ctx context.Context, phone, message string) error {
	payload, _ := json.Marshal(SendSMSPayload{PhoneNumber: phone, Message: message})
	reply, err := c.request(ctx, Envelope{Type: TypeSendSMS, Payload: payload})
	if err != nil {
		return err
	}
	var result SMSResult
	if err := json.Unmarshal(reply.Payload, &result); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed bridge reply")
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "device rejected the SMS request"
		}
		return appErrors.New(appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
	}
	return nil
}

// GetDeviceInfo posts a GET_DEVICE_INFO request and waits for the reply.
func (c *Client) GetDeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	reply, err := c.request(ctx, Envelope{Type: TypeGetDeviceInfo})
	if err != nil {
		return nil, err
	}
	var info DeviceInfo
	if err := json.Unmarshal(reply.Payload, &info); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed bridge reply")
	}
	return &info, nil
}

// HandleMessage routes a reply from the host to the waiting request by
// correlation ID. Unknown or late correlation IDs are dropped.
func (c *Client) HandleMessage(env Envelope) {
	if env.CorrelationID == "" {
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[env.CorrelationID]
	if ok {
		delete(c.pending, env.CorrelationID)
	}
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("dropping unmatched bridge reply", zap.String("correlationId", env.CorrelationID), zap.String("type", env.Type))
		return
	}
	ch <- env
}

func (c *Client) request(ctx context.Context, env Envelope) (Envelope, error) {
	if !c.Available() {
		return Envelope{}, appErrors.ErrBridgeUnavailable
	}

	env.CorrelationID = uuid.NewString()
	ch := make(chan Envelope, 1)
	c.mu.Lock()
	c.pending[env.CorrelationID] = ch
	c.mu.Unlock()

	cleanup := func() {
		c.mu.Lock()
		delete(c.pending, env.CorrelationID)
		c.mu.Unlock()
	}

	if err := c.host.Post(ctx, env); err != nil {
		cleanup()
		return Envelope{}, appErrors.Wrap(err, appErrors.ErrBridgeUnavailable.Code, appErrors.ErrBridgeUnavailable.Status, "failed to reach bridge host")
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case reply := <-ch:
		return reply, nil
	case <-timer.C:
		cleanup()
		return Envelope{}, appErrors.New(appErrors.ErrBridgeUnavailable.Code, appErrors.ErrBridgeUnavailable.Status, "bridge reply timed out")
	case <-ctx.Done():
		cleanup()
		return Envelope{}, appErrors.Wrap(ctx.Err(), appErrors.ErrBridgeUnavailable.Code, appErrors.ErrBridgeUnavailable.Status, "bridge request cancelled")
	}
}
