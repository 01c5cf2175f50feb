package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestSend(t *testing.T) {
	var received Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(Response{Status: "ok", ID: "n-1"})
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "secret", testLogger())
	err := svc.Send(context.Background(), &Message{
		UserID: "user-1",
		Kind:   KindReminder,
		Body:   "Напоминание: оплатить интернет",
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", received.UserID)
	assert.Equal(t, KindReminder, received.Kind)
}

func TestSendValidation(t *testing.T) {
	svc := NewService("http://example.invalid", "", testLogger())

	err := svc.Send(context.Background(), &Message{Kind: KindReminder, Body: "x"})
	assert.Error(t, err)

	err = svc.Send(context.Background(), &Message{UserID: "u", Body: "x"})
	assert.Error(t, err)

	unconfigured := NewService("", "", testLogger())
	err = unconfigured.Send(context.Background(), &Message{UserID: "u", Kind: KindReminder, Body: "x"})
	assert.Error(t, err)
}

func TestSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{Status: "error", Message: "unknown user"})
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "", testLogger())
	err := svc.Send(context.Background(), &Message{UserID: "u", Kind: KindReceiptLink, Body: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown user")
}

func TestSendBatchSkipsInvalid(t *testing.T) {
	var count int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msgs []Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msgs))
		count = len(msgs)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "", testLogger())
	err := svc.SendBatch(context.Background(), []*Message{
		{UserID: "u1", Kind: KindReminder, Body: "a"},
		{UserID: "", Kind: KindReminder, Body: "skipped"},
		{UserID: "u2", Kind: KindDebtOverdue, Body: "b"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSendBatchEmpty(t *testing.T) {
	svc := NewService("http://example.invalid", "", testLogger())
	assert.NoError(t, svc.SendBatch(context.Background(), nil))
}

func TestNop(t *testing.T) {
	var n Nop
	assert.NoError(t, n.Send(context.Background(), &Message{}))
	assert.NoError(t, n.SendBatch(context.Background(), nil))
}
