package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/hoursync/hoursync-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestEmailService(t *testing.T, cfg config.SMTPConfig, failures int) (*emailServiceImpl, *[]sentMail) {
	t.Helper()
	svc, err := NewEmailService(cfg)
	require.NoError(t, err)

	impl := svc.(*emailServiceImpl)
	impl.backoff = 0
	var sent []sentMail
	impl.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		if failures > 0 {
			failures--
			return errors.New("connection refused")
		}
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return impl, &sent
}

var testSMTP = config.SMTPConfig{
	Host:     "smtp.example.com",
	Port:     587,
	From:     "no-reply@hoursync.dev",
	FromName: "HourSync",
	AppURL:   "https://app.hoursync.dev",
}

func TestSendAccountCreated(t *testing.T) {
	svc, sent := newTestEmailService(t, testSMTP, 0)

	err := svc.SendAccountCreated("ana@example.com", "Ana", []string{"07:40-08:05", "12:00-12:10"})

	require.NoError(t, err)
	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, []string{"ana@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Your HourSync account\r\n")
	assert.Contains(t, mail.msg, "Welcome to HourSync, Ana")
	assert.Contains(t, mail.msg, "07:40-08:05, 12:00-12:10")
	assert.Contains(t, mail.msg, "https://app.hoursync.dev")
}

func TestSendAccountStatusChanged(t *testing.T) {
	svc, sent := newTestEmailService(t, testSMTP, 0)

	require.NoError(t, svc.SendAccountStatusChanged("ana@example.com", "Ana", false))

	assert.Contains(t, (*sent)[0].msg, "was deactivated")
}

func TestSendPasswordReset(t *testing.T) {
	svc, sent := newTestEmailService(t, testSMTP, 0)

	err := svc.SendPasswordReset("ana@example.com", "https://app.hoursync.dev/reset-password?token=abc", "2024-01-02 08:30 UTC")

	require.NoError(t, err)
	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Contains(t, mail.msg, "Subject: Reset your HourSync password\r\n")
	assert.Contains(t, mail.msg, "https://app.hoursync.dev/reset-password?token=abc")
	assert.Contains(t, mail.msg, "expires at 2024-01-02 08:30 UTC")
}

func TestSendHTML_RetriesThenSucceeds(t *testing.T) {
	svc, sent := newTestEmailService(t, testSMTP, 2)

	require.NoError(t, svc.SendAccountStatusChanged("ana@example.com", "Ana", true))

	assert.Len(t, *sent, 1)
}

func TestSendHTML_GivesUpAfterMaxRetries(t *testing.T) {
	svc, sent := newTestEmailService(t, testSMTP, maxRetries)

	err := svc.SendAccountStatusChanged("ana@example.com", "Ana", true)

	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Empty(t, *sent)
}

func TestSendHTML_SkipsWithoutHost(t *testing.T) {
	svc, sent := newTestEmailService(t, config.SMTPConfig{}, 0)

	require.NoError(t, svc.SendAccountCreated("ana@example.com", "Ana", nil))

	assert.Empty(t, *sent)
}
