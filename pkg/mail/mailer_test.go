package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSMTPClient struct {
	mailFrom string
	rcptTo   string
	data     bytes.Buffer
	quit     bool
}

func (f *fakeSMTPClient) Mail(from string) error { f.mailFrom = from; return nil }
func (f *fakeSMTPClient) Rcpt(to string) error   { f.rcptTo = to; return nil }
func (f *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&f.data}, nil
}
func (f *fakeSMTPClient) Quit() error                      { f.quit = true; return nil }
func (f *fakeSMTPClient) Close() error                     { return nil }
func (f *fakeSMTPClient) StartTLS(*tls.Config) error       { return nil }
func (f *fakeSMTPClient) Auth(smtp.Auth) error             { return nil }
func (f *fakeSMTPClient) Extension(string) (bool, string)  { return false, "" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newTestMailer(t *testing.T, cfg SMTPSettings) (*smtpMailer, *fakeSMTPClient) {
	t.Helper()

	mailer, err := NewSMTPMailer(cfg)
	require.NoError(t, err)

	client := &fakeSMTPClient{}
	impl := mailer.(*smtpMailer)
	impl.dial = func(context.Context, SMTPSettings) (net.Conn, smtpClient, error) {
		server, _ := net.Pipe()
		return server, client, nil
	}
	impl.auth = func(smtpClient, SMTPSettings) error { return nil }
	return impl, client
}

func TestSendDisabledReturnsSentinel(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: "holder@example.com"})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestNewSMTPMailerValidatesEnabledConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true, Port: 587})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	require.Error(t, err)
}

func TestSendWritesHeadersAndBody(t *testing.T) {
	cfg := SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587, From: "portal@example.com"}
	mailer, client := newTestMailer(t, cfg)

	err := mailer.Send(context.Background(), Message{
		To:      "holder@example.com",
		Subject: "Confirm Your Registration",
		Body:    "<p>Hello</p>",
		HTML:    true,
	})
	require.NoError(t, err)

	require.Equal(t, "portal@example.com", client.mailFrom)
	require.Equal(t, "holder@example.com", client.rcptTo)
	require.True(t, client.quit)

	raw := client.data.String()
	require.Contains(t, raw, "Subject: Confirm Your Registration")
	require.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	require.Contains(t, raw, "<p>Hello</p>")
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	cfg := SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587, From: "portal@example.com"}
	mailer, _ := newTestMailer(t, cfg)

	err := mailer.Send(context.Background(), Message{To: "not-an-address"})
	require.Error(t, err)

	err = mailer.Send(context.Background(), Message{To: ""})
	require.Error(t, err)
}

func TestEscapeHeaderStripsNewlines(t *testing.T) {
	require.Equal(t, "a b", escapeHeader("a\r\nb"))
}
