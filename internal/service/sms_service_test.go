package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/substitute-api/internal/bridge"
	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/repository"
	appErrors "github.com/schooldesk/substitute-api/pkg/errors"
)

func newSMSService(t *testing.T, br *bridge.Client) *SMSService {
	t.Helper()
	repo := repository.NewSMSRepository(newTestStore(t))
	svc := NewSMSService(repo, br, 0, nil, nil)
	svc.sleep = func(time.Duration) {}
	return svc
}

func TestSMSDeepLinkEncodesMessage(t *testing.T) {
	link := DeepLink("0300123", "You cover 9A period 3 & 4")
	assert.Equal(t, "sms:0300123?body=You+cover+9A+period+3+%26+4", link)
}

func TestSMSServiceSendMessagesNative(t *testing.T) {
	svc := newSMSService(t, nil)
	ctx := context.Background()

	results, err := svc.SendMessages(ctx, []SMSRecipient{
		{TeacherID: 1, Name: "Sub One", PhoneNumber: "0300111"},
		{TeacherID: 2, Name: "Sub Two", PhoneNumber: "0300222"},
	}, "School closed tomorrow", models.SMSMethodNative)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, models.SMSSent, r.Status)
		assert.NotEmpty(t, r.DeepLink)
		assert.NotEmpty(t, r.EntryID)
	}

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.SMSSent, history[0].Status)
	assert.Equal(t, models.SMSMethodNative, history[0].Method)
}

func TestSMSServiceSendMessagesSkipsMissingPhone(t *testing.T) {
	svc := newSMSService(t, nil)
	ctx := context.Background()

	results, err := svc.SendMessages(ctx, []SMSRecipient{
		{TeacherID: 1, Name: "No Phone"},
		{TeacherID: 2, Name: "Sub Two", PhoneNumber: "0300222"},
	}, "msg", models.SMSMethodNative)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, models.SMSFailed, results[0].Status)
	assert.Empty(t, results[0].EntryID)
	assert.Equal(t, models.SMSSent, results[1].Status, "one failure must not stop the batch")

	history, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1, "skipped recipients get no history entry")
}

func TestSMSServiceSendMessagesValidation(t *testing.T) {
	svc := newSMSService(t, nil)
	ctx := context.Background()

	_, err := svc.SendMessages(ctx, []SMSRecipient{{PhoneNumber: "0300111"}}, "", models.SMSMethodNative)
	require.Error(t, err)

	_, err = svc.SendMessages(ctx, nil, "msg", models.SMSMethodNative)
	require.Error(t, err)
}

func TestSMSServiceBridgeMethodRequiresHost(t *testing.T) {
	svc := newSMSService(t, bridge.NewClient(nil, time.Second, nil))

	_, err := svc.SendMessages(context.Background(), []SMSRecipient{{PhoneNumber: "0300111"}}, "msg", models.SMSMethodBridge)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBridgeUnavailable.Code, appErrors.FromError(err).Code)
}

func TestSMSServiceSendDelayBetweenRecipients(t *testing.T) {
	svc := newSMSService(t, nil)
	svc.sendDelay = 100 * time.Millisecond
	var slept []time.Duration
	svc.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := svc.SendMessages(context.Background(), []SMSRecipient{
		{Name: "A", PhoneNumber: "1"},
		{Name: "B", PhoneNumber: "2"},
		{Name: "C", PhoneNumber: "3"},
	}, "msg", models.SMSMethodNative)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, slept)
}

func TestSMSServiceResendAppendsNewEntry(t *testing.T) {
	svc := newSMSService(t, nil)
	ctx := context.Background()

	results, err := svc.SendMessages(ctx, []SMSRecipient{{TeacherID: 1, Name: "Sub One", PhoneNumber: "0300111"}}, "msg", models.SMSMethodNative)
	require.NoError(t, err)
	original := results[0].EntryID

	resent, err := svc.Resend(ctx, original)
	require.NoError(t, err)
	assert.Equal(t, models.SMSSent, resent.Status)
	assert.NotEqual(t, original, resent.EntryID)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, original, history[0].ID)
	assert.Equal(t, "msg", history[1].Message)
}

func TestSMSServiceResendUnknownEntry(t *testing.T) {
	svc := newSMSService(t, nil)

	_, err := svc.Resend(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSMSServiceRecordLogsSentEntries(t *testing.T) {
	svc := newSMSService(t, nil)
	ctx := context.Background()

	n, err := svc.Record(ctx, []SMSRecipient{
		{TeacherID: 1, Name: "Sub One", PhoneNumber: "0300111"},
		{TeacherID: 2, Name: "Sub Two", PhoneNumber: "0300222"},
	}, "sent from device", models.SMSMethodAPI)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, e := range history {
		assert.Equal(t, models.SMSSent, e.Status)
		assert.Equal(t, models.SMSMethodAPI, e.Method)
	}
}
