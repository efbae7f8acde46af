package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestResetLink(t *testing.T) {
	link, err := ResetLink("https://app.example/reset-password?lang=ko", "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example/reset-password?lang=ko&token=abc-123", link)

	_, err = ResetLink("://bad", "x")
	assert.Error(t, err)
}

func TestNewResetMessage(t *testing.T) {
	msg, err := NewResetMessage("no-reply@example.com", "user@example.com", ResetMail{
		Name:     "홍길동",
		Link:     "https://app.example/reset?token=t",
		ValidFor: "1시간",
	})
	require.NoError(t, err)

	assert.Equal(t, "no-reply@example.com", msg.From)
	assert.Equal(t, "user@example.com", msg.To)
	assert.Equal(t, resetSubject, msg.Subject)
	assert.Contains(t, msg.Text, "홍길동님")
	assert.Contains(t, msg.Text, "https://app.example/reset?token=t")
	assert.Contains(t, msg.Text, "1시간")
}

func TestWebhookMailer_Send(t *testing.T) {
	var got Message
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewWebhookMailer(srv.URL, "relay-token", 2*time.Second)
	err := m.Send(context.Background(), Message{From: "a@example.com", To: "b@example.com", Subject: "s", Text: "t"})

	require.NoError(t, err)
	assert.Equal(t, "Bearer relay-token", auth)
	assert.Equal(t, "b@example.com", got.To)
	assert.Equal(t, "t", got.Text)
}

func TestWebhookMailer_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookMailer(srv.URL, "", time.Second).Send(context.Background(), Message{To: "b@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&buf), zapcore.InfoLevel)

	err := NewLogMailer(zap.New(core)).Send(context.Background(), Message{To: "b@example.com", Subject: "hello"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "b@example.com")
	assert.Contains(t, buf.String(), "mail_not_delivered")
}
