package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/strideshop-receipts/internal/email"
)

func message() email.Message {
	return email.Message{
		From:    email.Address{Name: "StrideShop", Email: "shop@example.com"},
		To:      "buyer@example.com",
		Subject: "Receipt #42",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	}
}

// ─── SMTP ─────────────────────────────────────────────────────────────────────

type smtpCapture struct {
	from, to string
	data     string
}

// fakeSMTP accepts connections on loopback and speaks just enough ESMTP for
// net/smtp without TLS or AUTH. Each completed DATA is sent on the channel.
func fakeSMTP(t *testing.T) (string, int, <-chan smtpCapture) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	out := make(chan smtpCapture, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveSMTP(conn, out)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, out
}

func serveSMTP(conn net.Conn, out chan<- smtpCapture) {
	defer conn.Close()
	tp := textproto.NewConn(conn)
	var cur smtpCapture

	_ = tp.PrintfLine("220 localhost ESMTP test")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(verb, "EHLO"), strings.HasPrefix(verb, "HELO"):
			_ = tp.PrintfLine("250-localhost")
			_ = tp.PrintfLine("250 8BITMIME")
		case strings.HasPrefix(verb, "MAIL FROM:"):
			cur.from = line
			_ = tp.PrintfLine("250 OK")
		case strings.HasPrefix(verb, "RCPT TO:"):
			cur.to = line
			_ = tp.PrintfLine("250 OK")
		case verb == "DATA":
			_ = tp.PrintfLine("354 go ahead")
			body, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			cur.data = string(body)
			_ = tp.PrintfLine("250 queued")
			out <- cur
		case verb == "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("502 not implemented")
		}
	}
}

func TestSMTPTransport_Send(t *testing.T) {
	host, port, got := fakeSMTP(t)
	tr := email.NewSMTPTransport(email.SMTPConfig{Host: host, Port: port, DialTimeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := tr.Send(ctx, message())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case c := <-got:
		assert.Contains(t, c.from, "<shop@example.com>")
		assert.Contains(t, c.to, "<buyer@example.com>")
		assert.Contains(t, c.data, "Subject: Receipt #42")
		assert.Contains(t, c.data, "Message-ID: <"+id+">")
		assert.Contains(t, c.data, "Content-Type: multipart/alternative")
		assert.Contains(t, c.data, "Content-Type: text/plain; charset=UTF-8")
		assert.Contains(t, c.data, "Content-Type: text/html; charset=UTF-8")
		assert.Contains(t, c.data, "<p>hi</p>")
	case <-ctx.Done():
		t.Fatal("server never received DATA")
	}
}

func TestSMTPTransport_Verify(t *testing.T) {
	host, port, _ := fakeSMTP(t)
	tr := email.NewSMTPTransport(email.SMTPConfig{Host: host, Port: port, DialTimeout: time.Second})

	assert.NoError(t, tr.Verify(context.Background()))
}

func TestSMTPTransport_AuthNotOffered(t *testing.T) {
	host, port, _ := fakeSMTP(t)
	tr := email.NewSMTPTransport(email.SMTPConfig{
		Host: host, Port: port, Username: "u", Password: "p", DialTimeout: time.Second,
	})

	err := tr.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH")
}

func TestSMTPTransport_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	tr := email.NewSMTPTransport(email.SMTPConfig{Host: "127.0.0.1", Port: port, DialTimeout: time.Second})
	_, err = tr.Send(context.Background(), message())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:"+strconv.Itoa(port))
}

// ─── SES ──────────────────────────────────────────────────────────────────────

type fakeSES struct {
	sent    *sesv2.SendEmailInput
	sendErr error
	enabled bool
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.sent = in
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func (f *fakeSES) GetAccount(context.Context, *sesv2.GetAccountInput, ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error) {
	return &sesv2.GetAccountOutput{SendingEnabled: f.enabled}, nil
}

func TestSESTransport_Send(t *testing.T) {
	api := &fakeSES{}
	tr := email.NewSESTransportWithClient(api)

	id, err := tr.Send(context.Background(), message())
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)

	require.NotNil(t, api.sent)
	assert.Equal(t, []string{"buyer@example.com"}, api.sent.Destination.ToAddresses)
	assert.Equal(t, `"StrideShop" <shop@example.com>`, aws.ToString(api.sent.FromEmailAddress))
	assert.Equal(t, "Receipt #42", aws.ToString(api.sent.Content.Simple.Subject.Data))
	assert.Equal(t, "<p>hi</p>", aws.ToString(api.sent.Content.Simple.Body.Html.Data))
	assert.Equal(t, "hi", aws.ToString(api.sent.Content.Simple.Body.Text.Data))
}

func TestSESTransport_SendError(t *testing.T) {
	tr := email.NewSESTransportWithClient(&fakeSES{sendErr: errors.New("throttled")})

	_, err := tr.Send(context.Background(), message())
	assert.ErrorContains(t, err, "throttled")
}

func TestSESTransport_Verify(t *testing.T) {
	assert.NoError(t, email.NewSESTransportWithClient(&fakeSES{enabled: true}).Verify(context.Background()))
	assert.Error(t, email.NewSESTransportWithClient(&fakeSES{enabled: false}).Verify(context.Background()))
}

// ─── RESEND ───────────────────────────────────────────────────────────────────

func TestResendTransport_Send(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"id":"re-123"}`))
	}))
	defer srv.Close()

	id, err := email.NewResendTransport("re_test", srv.URL).Send(context.Background(), message())
	require.NoError(t, err)
	assert.Equal(t, "re-123", id)
	assert.Equal(t, "Receipt #42", body["subject"])
	assert.Equal(t, []any{"buyer@example.com"}, body["to"])
}

func TestResendTransport_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"bad from"}`))
	}))
	defer srv.Close()

	_, err := email.NewResendTransport("re_test", srv.URL).Send(context.Background(), message())
	var apiErr *email.ResendAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Name)
}

func TestResendTransport_Verify(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"full access key", http.StatusOK, `{"data":[]}`, false},
		{"send-only key", http.StatusUnauthorized, `{"name":"restricted_api_key","message":"restricted"}`, false},
		{"bad key", http.StatusBadRequest, `{"name":"validation_error","message":"API key is invalid"}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/domains", r.URL.Path)
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := email.NewResendTransport("re_test", srv.URL).Verify(context.Background())
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
