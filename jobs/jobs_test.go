package jobs

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type recordingMailer struct {
	sent []SendEmailPayload
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg SendEmailPayload) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func TestSendEmailJobDelivers(t *testing.T) {
	mailer := &recordingMailer{}
	task, err := NewSendEmailTask(SendEmailPayload{To: "alice@example.com", Subject: "Password reset", Body: "token"})
	require.NoError(t, err)

	require.NoError(t, NewSendEmailJob(mailer, nil, nil).Handle(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].To)
}

func TestSendEmailJobSkipsRetryOnBadPayload(t *testing.T) {
	mailer := &recordingMailer{}
	err := NewSendEmailJob(mailer, nil, nil).Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, mailer.sent)
}

func TestSendEmailJobRetriesDeliveryFailure(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("connection refused")}
	task, _ := NewSendEmailTask(SendEmailPayload{To: "alice@example.com"})

	err := NewSendEmailJob(mailer, nil, nil).Handle(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestSMTPMailerFormatsMessage(t *testing.T) {
	m, err := NewSMTPMailer("localhost", 1025, "no-reply@cms.test")
	require.NoError(t, err)
	var sent []*mail.Msg
	m.deliver = func(ctx context.Context, msgs ...*mail.Msg) error {
		sent = append(sent, msgs...)
		return nil
	}

	require.NoError(t, m.Send(context.Background(), SendEmailPayload{To: "alice@example.com", Subject: "Passwort zurücksetzen", Body: "line1\nline2"}))
	require.Len(t, sent, 1)
	var buf bytes.Buffer
	_, err = sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Date: ")
	assert.Contains(t, raw, "Message-ID: <")
	assert.Contains(t, raw, "Subject: =?UTF-8?q?")
	assert.Contains(t, raw, "To: <alice@example.com>")
	assert.Contains(t, raw, "line1\r\nline2")
}

func TestSMTPMailerRejectsHeaderInjection(t *testing.T) {
	m, err := NewSMTPMailer("localhost", 1025, "no-reply@cms.test")
	require.NoError(t, err)
	m.deliver = func(context.Context, ...*mail.Msg) error {
		t.Fatal("must not send")
		return nil
	}
	assert.Error(t, m.Send(context.Background(), SendEmailPayload{To: "alice@example.com\r\nBcc: all@example.com"}))
	assert.Error(t, m.Send(context.Background(), SendEmailPayload{To: "alice@example.com", Subject: "Hi\nBcc: all@example.com"}))
}

func TestSMTPMailerSurfacesDeliveryError(t *testing.T) {
	m, err := NewSMTPMailer("localhost", 1025, "no-reply@cms.test")
	require.NoError(t, err)
	m.deliver = func(context.Context, ...*mail.Msg) error { return errors.New("connection refused") }
	err = m.Send(context.Background(), SendEmailPayload{To: "alice@example.com", Subject: "Hi", Body: "x"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewWorkerDefaultsLogger(t *testing.T) {
	w, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	require.NoError(t, err)
	assert.NotNil(t, w.logger)

	var nilWorker *Worker
	assert.Error(t, nilWorker.Run(context.Background()))
}

func TestPurgeResetTokens(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec(`UPDATE users SET reset_password_token = NULL`).WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	job := NewPurgeResetTokensJob(mock, nil, nil)
	job.now = func() time.Time { return now }
	require.NoError(t, job.Handle(context.Background(), NewPurgeResetTokensTask()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, nil).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"retry":0,"failed":0}`, rr.Body.String())
}
