package webhook_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Arnutt-N/time-reminder/internal/mocks"
	"github.com/Arnutt-N/time-reminder/internal/webhook"
)

const hookURL = "https://bot.example.com/webhook/123456:ABCDEFsecret"

func setupManager(t *testing.T) (*webhook.Manager, *mocks.MockProvider, *observer.ObservedLogs) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockProvider(ctrl)
	core, logs := observer.New(zapcore.DebugLevel)
	return webhook.NewManager(p, zap.New(core)), p, logs
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, webhook.ValidateURL(hookURL))
	assert.ErrorIs(t, webhook.ValidateURL(" "), webhook.ErrEmptyURL)
	assert.ErrorIs(t, webhook.ValidateURL("http://bot.example.com/webhook"), webhook.ErrInsecureURL)
	assert.ErrorIs(t, webhook.ValidateURL("https://"), webhook.ErrInvalidURL)
	assert.ErrorIs(t, webhook.ValidateURL("https://bot.example.com/"+strings.Repeat("a", 512)), webhook.ErrURLTooLong)
}

func TestSetup_Configured(t *testing.T) {
	m, p, logs := setupManager(t)

	gomock.InOrder(
		p.EXPECT().DeleteWebhook(gomock.Any(), true).Return(nil),
		p.EXPECT().SetWebhook(gomock.Any(), webhook.Descriptor{
			URL:                hookURL,
			SecretToken:        "tok",
			AllowedUpdates:     webhook.DefaultAllowedUpdates,
			MaxConnections:     webhook.DefaultMaxConnections,
			DropPendingUpdates: true,
		}).Return(nil),
		p.EXPECT().GetWebhookInfo(gomock.Any()).Return(webhook.Info{URL: hookURL}, nil),
	)

	res, err := m.Setup(context.Background(), hookURL, webhook.Options{SecretToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, webhook.StateConfigured, res.State)
	assert.Equal(t, webhook.StateConfigured, m.State())

	st := m.Status()
	assert.True(t, st.HasSecret)
	assert.NotContains(t, st.URL, "ABCDEFsecret")
	for _, e := range logs.All() {
		for _, f := range e.Context {
			assert.NotContains(t, f.String, "ABCDEFsecret")
		}
	}
}

func TestSetup_Mismatch(t *testing.T) {
	m, p, _ := setupManager(t)

	p.EXPECT().DeleteWebhook(gomock.Any(), true).Return(nil)
	p.EXPECT().SetWebhook(gomock.Any(), gomock.Any()).Return(nil)
	p.EXPECT().GetWebhookInfo(gomock.Any()).Return(webhook.Info{URL: "https://other.example.com/hook"}, nil)

	res, err := m.Setup(context.Background(), hookURL, webhook.Options{})
	require.NoError(t, err)
	assert.Equal(t, webhook.StateMismatch, res.State)
	assert.NotEmpty(t, m.Status().Error)
}

func TestSetup_InvalidURLNeverCallsProvider(t *testing.T) {
	m, _, _ := setupManager(t)

	res, err := m.Setup(context.Background(), "http://insecure.example.com", webhook.Options{})
	assert.ErrorIs(t, err, webhook.ErrInsecureURL)
	assert.Equal(t, webhook.StateError, res.State)
	assert.Equal(t, webhook.StateError, m.State())
}

func TestSetup_ProviderFailure(t *testing.T) {
	m, p, _ := setupManager(t)
	boom := errors.New("telegram 502")

	p.EXPECT().DeleteWebhook(gomock.Any(), false).Return(nil)
	p.EXPECT().SetWebhook(gomock.Any(), gomock.Any()).Return(boom)

	_, err := m.Setup(context.Background(), hookURL, webhook.Options{KeepPending: true, MaxConnections: 10})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, webhook.StateError, m.State())
}

func TestCheckStatus_DoesNotChangeState(t *testing.T) {
	m, p, _ := setupManager(t)

	p.EXPECT().GetWebhookInfo(gomock.Any()).Return(webhook.Info{URL: hookURL, PendingUpdateCount: 3}, nil)

	info, err := m.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, info.PendingUpdateCount)
	assert.Equal(t, webhook.StateNotSet, m.State())
	assert.False(t, m.Status().LastCheck.IsZero())
}

func TestReset_DeletesThenSetsUp(t *testing.T) {
	m, p, _ := setupManager(t)

	gomock.InOrder(
		p.EXPECT().DeleteWebhook(gomock.Any(), true).Return(nil),
		p.EXPECT().DeleteWebhook(gomock.Any(), true).Return(nil),
		p.EXPECT().SetWebhook(gomock.Any(), gomock.Any()).Return(nil),
		p.EXPECT().GetWebhookInfo(gomock.Any()).Return(webhook.Info{URL: hookURL}, nil),
	)

	res, err := m.Reset(context.Background(), hookURL, webhook.Options{})
	require.NoError(t, err)
	assert.Equal(t, webhook.StateConfigured, res.State)
}

func TestDelete(t *testing.T) {
	m, p, _ := setupManager(t)

	p.EXPECT().DeleteWebhook(gomock.Any(), false).Return(nil)
	require.NoError(t, m.Delete(context.Background(), false))
	assert.Equal(t, webhook.StateNotSet, m.State())

	p.EXPECT().DeleteWebhook(gomock.Any(), false).Return(errors.New("down"))
	assert.Error(t, m.Delete(context.Background(), false))
	assert.Equal(t, webhook.StateError, m.State())
}

func TestReport(t *testing.T) {
	m, p, _ := setupManager(t)

	p.EXPECT().GetWebhookInfo(gomock.Any()).Return(webhook.Info{}, errors.New("timeout"))

	out := m.Report(context.Background())
	assert.Contains(t, out, "Webhook state: not_set")
	assert.Contains(t, out, "Status check failed")
}
