package emailsvc

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavorsense/flavorsense/core"
)

// fakeSMTPServer is a minimal ESMTP server: it offers STARTTLS, then accepts any AUTH,
// sender and recipient, and records the commands and data it received.
type fakeSMTPServer struct {
	ln       net.Listener
	tlsConf  *tls.Config
	noTLS    bool
	mu       sync.Mutex
	commands []string
	data     string
	done     chan struct{}
}

func newFakeSMTPServer(t *testing.T, noTLS bool) (*fakeSMTPServer, *x509.CertPool) {
	ts := httptest.NewTLSServer(http.NotFoundHandler())
	t.Cleanup(ts.Close)
	pool := x509.NewCertPool()
	pool.AddCert(ts.Certificate())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := &fakeSMTPServer{
		ln:      ln,
		tlsConf: &tls.Config{Certificates: ts.TLS.Certificates},
		noTLS:   noTLS,
		done:    make(chan struct{}),
	}
	go srv.serve()
	return srv, pool
}

func (srv *fakeSMTPServer) port() int {
	return srv.ln.Addr().(*net.TCPAddr).Port
}

func (srv *fakeSMTPServer) record(cmd string) {
	srv.mu.Lock()
	srv.commands = append(srv.commands, cmd)
	srv.mu.Unlock()
}

func (srv *fakeSMTPServer) serve() {
	defer close(srv.done)

	conn, err := srv.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 fake ESMTP")
	secured := false
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.Fields(line + " ")[0])
		srv.record(verb)

		switch verb {
		case "EHLO":
			_ = tp.PrintfLine("250-fake")
			if !secured && !srv.noTLS {
				_ = tp.PrintfLine("250 STARTTLS")
			} else {
				_ = tp.PrintfLine("250 AUTH PLAIN")
			}
		case "STARTTLS":
			_ = tp.PrintfLine("220 ready")
			tlsConn := tls.Server(conn, srv.tlsConf)
			if err = tlsConn.Handshake(); err != nil {
				return
			}
			tp = textproto.NewConn(tlsConn)
			secured = true
		case "AUTH":
			_ = tp.PrintfLine("235 ok")
		case "MAIL", "RCPT":
			srv.record(line)
			_ = tp.PrintfLine("250 ok")
		case "DATA":
			_ = tp.PrintfLine("354 go ahead")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			srv.mu.Lock()
			srv.data = string(data)
			srv.mu.Unlock()
			_ = tp.PrintfLine("250 queued")
		case "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("502 not implemented")
		}
	}
}

func (srv *fakeSMTPServer) wait(t *testing.T) {
	select {
	case <-srv.done:
	case <-time.After(5 * time.Second):
		t.Fatal("fake smtp server did not finish")
	}
}

func newTestSMTPService(port int, pool *x509.CertPool) *SMTPService {
	conf := &core.Config{
		AppName: "Flavorsense",
		Email: core.EmailConfig{
			Host:     "127.0.0.1",
			Port:     port,
			User:     "mess@campus.edu",
			Password: "app-password",
			From:     "mess@campus.edu",
			Timeout:  5 * time.Second,
		},
	}
	svc := NewSMTPService(conf, nopLogger{})
	svc.tlsConfig = &tls.Config{ServerName: "127.0.0.1", RootCAs: pool}
	return svc
}

func reminderMessage(to string) *core.EmailMessage {
	return &core.EmailMessage{
		To:      []mail.Address{{Address: to}},
		Subject: "📢 Reminder: Rate today's mess on Flavorsense",
		BodyStr: "Hello,\n\nPlease rate today's mess.\n",
	}
}

func TestSMTPService_SendMessage(t *testing.T) {
	srv, pool := newFakeSMTPServer(t, false)
	svc := newTestSMTPService(srv.port(), pool)

	ok := svc.SendMessage(reminderMessage("asha@campus.edu"))
	require.True(t, ok)
	srv.wait(t)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, []string{
		"EHLO", "STARTTLS", "EHLO", "AUTH",
		"MAIL", "MAIL FROM:<mess@campus.edu>",
		"RCPT", "RCPT TO:<asha@campus.edu>",
		"DATA", "QUIT",
	}, srv.commands)
	assert.Contains(t, srv.data, "To: <asha@campus.edu>\n") // dot-decoding turns CRLF into LF
	assert.Contains(t, srv.data, "Subject: =?utf-8?q?")
	assert.Contains(t, srv.data, "Please rate today's mess.")
}

func TestSMTPService_requiresSTARTTLS(t *testing.T) {
	srv, pool := newFakeSMTPServer(t, true)
	svc := newTestSMTPService(srv.port(), pool)

	assert.False(t, svc.SendMessage(reminderMessage("asha@campus.edu")))
	srv.wait(t)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.NotContains(t, srv.commands, "AUTH")
	assert.NotContains(t, srv.commands, "DATA")
}

func TestSMTPService_notConfigured(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	svc := newTestSMTPService(ln.Addr().(*net.TCPAddr).Port, nil)
	svc.user, svc.password = "", ""
	assert.False(t, svc.SendMessage(reminderMessage("asha@campus.edu")))

	// nothing dialed
	_ = ln.(*net.TCPListener).SetDeadline(time.Now().Add(50 * time.Millisecond))
	_, err = ln.Accept()
	assert.Error(t, err)
}

func TestSMTPService_unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	svc := newTestSMTPService(port, nil)
	assert.False(t, svc.SendMessage(reminderMessage("asha@campus.edu")))
}
