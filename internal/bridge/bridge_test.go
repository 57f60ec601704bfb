package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

// replyHost answers every posted request via the client, simulating the
// native side of the bridge.
type replyHost struct {
	client *Client
	reply  func(env Envelope) Envelope
}

func (h *replyHost) Post(_ context.Context, env Envelope) error {
	go h.client.HandleMessage(h.reply(env))
	return nil
}

type failingHost struct{}

func (failingHost) Post(context.Context, Envelope) error { return errors.New("webview gone") }

type silentHost struct{}

func (silentHost) Post(context.Context, Envelope) error { return nil }

func TestClientSendSMSMatchesCorrelationID(t *testing.T) {
	client := NewClient(nil, time.Second, nil)
	var posted Envelope
	host := &replyHost{client: client, reply: func(env Envelope) Envelope {
		posted = env
		payload, _ := json.Marshal(SMSResult{Success: true})
		return Envelope{Type: TypeSMSResult, CorrelationID: env.CorrelationID, Payload: payload}
	}}
	client.host = host

	err := client.SendSMS(context.Background(), "0300123", "hello")
	require.NoError(t, err)

	assert.Equal(t, TypeSendSMS, posted.Type)
	assert.NotEmpty(t, posted.CorrelationID)
	var payload SendSMSPayload
	require.NoError(t, json.Unmarshal(posted.Payload, &payload))
	assert.Equal(t, "0300123", payload.PhoneNumber)
	assert.Equal(t, "hello", payload.Message)
}

func TestClientSendSMSDeviceFailure(t *testing.T) {
	client := NewClient(nil, time.Second, nil)
	client.host = &replyHost{client: client, reply: func(env Envelope) Envelope {
		payload, _ := json.Marshal(SMSResult{Success: false, Error: "no sim card"})
		return Envelope{Type: TypeSMSResult, CorrelationID: env.CorrelationID, Payload: payload}
	}}

	err := client.SendSMS(context.Background(), "0300123", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sim card")
}

func TestClientRequestTimesOut(t *testing.T) {
	client := NewClient(silentHost{}, 20*time.Millisecond, nil)

	err := client.SendSMS(context.Background(), "0300123", "hello")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBridgeUnavailable.Code, appErrors.FromError(err).Code)
	assert.Empty(t, client.pending, "timed out request must be cleaned up")
}

func TestClientRequestHostError(t *testing.T) {
	client := NewClient(failingHost{}, time.Second, nil)

	err := client.SendSMS(context.Background(), "0300123", "hello")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBridgeUnavailable.Code, appErrors.FromError(err).Code)
	assert.Empty(t, client.pending)
}

func TestClientUnavailableWithoutHost(t *testing.T) {
	client := NewClient(nil, time.Second, nil)
	assert.False(t, client.Available())

	err := client.SendSMS(context.Background(), "0300123", "hello")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBridgeUnavailable.Code, appErrors.FromError(err).Code)

	var nilClient *Client
	assert.False(t, nilClient.Available())
}

func TestClientRequestCancelled(t *testing.T) {
	client := NewClient(silentHost{}, time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := client.SendSMS(ctx, "0300123", "hello")
	require.Error(t, err)
	assert.Empty(t, client.pending)
}

func TestClientHandleMessageDropsUnmatched(t *testing.T) {
	client := NewClient(silentHost{}, time.Second, nil)

	// must not panic or block
	client.HandleMessage(Envelope{Type: TypeSMSResult, CorrelationID: "stale"})
	client.HandleMessage(Envelope{Type: TypeSMSResult})
}

func TestClientGetDeviceInfo(t *testing.T) {
	client := NewClient(nil, time.Second, nil)
	client.host = &replyHost{client: client, reply: func(env Envelope) Envelope {
		payload, _ := json.Marshal(DeviceInfo{Platform: "android", Model: "Pixel 6"})
		return Envelope{Type: TypeDeviceInfoResponse, CorrelationID: env.CorrelationID, Payload: payload}
	}}

	info, err := client.GetDeviceInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "android", info.Platform)
	assert.Equal(t, "Pixel 6", info.Model)
}

func TestQueueHostDropsOldestWhenFull(t *testing.T) {
	host := NewQueueHost(2)
	ctx := context.Background()

	require.NoError(t, host.Post(ctx, Envelope{Type: "a"}))
	require.NoError(t, host.Post(ctx, Envelope{Type: "b"}))
	require.NoError(t, host.Post(ctx, Envelope{Type: "c"}))

	drained := host.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, "b", drained[0].Type)
	assert.Equal(t, "c", drained[1].Type)
}

func TestQueueHostDrainClearsQueue(t *testing.T) {
	host := NewQueueHost(0)
	require.NoError(t, host.Post(context.Background(), Envelope{Type: "a"}))

	require.Len(t, host.Drain(), 1)
	drained := host.Drain()
	assert.NotNil(t, drained)
	assert.Empty(t, drained)
}
