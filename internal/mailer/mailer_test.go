package mailer_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_WithoutHostDropsMessages(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := mailer.New(mailer.SMTPConfig{}, zap.New(core))

	err := m.Send(context.Background(), "hr@premidis.cd", "Overlap", "body")

	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("mail delivery disabled, message dropped").Len())
}

func TestBuildMessage(t *testing.T) {
	msg := string(mailer.BuildMessage("no-reply@premidis.com", "hr@premidis.cd", "Leave overlap", "Two people are away."))

	assert.True(t, strings.HasPrefix(msg, "From: no-reply@premidis.com\r\nTo: hr@premidis.cd\r\nSubject: Leave overlap\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nTwo people are away."))
	assert.Contains(t, msg, "charset=\"UTF-8\"")
}

func TestSMTPMailer_StalledServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			// accept and never send the 220 greeting
			defer conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	m := mailer.New(mailer.SMTPConfig{Host: "127.0.0.1", Port: port, From: "no-reply@premidis.com"}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Send(ctx, "hr@premidis.cd", "Leave overlap", "body") }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Send did not return after the context deadline")
	}
}
