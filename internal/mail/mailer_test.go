package mail

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panchayat/internal/config"
)

func TestMessageHeaders(t *testing.T) {
	m := NewMailer(config.MailConfig{Host: "127.0.0.1", Port: 1025, From: "no-reply@gp.local"})

	msg, err := m.message("asha@example.com", "Hello", "<p>hi</p>")
	require.NoError(t, err)

	assert.Equal(t, []string{"no-reply@gp.local"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"asha@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Hello"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
}

func TestMessageRequiresRecipient(t *testing.T) {
	m := NewMailer(config.MailConfig{From: "no-reply@gp.local"})

	_, err := m.message("", "Hello", "<p>hi</p>")
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.ErrorIs(t, m.SendHTML("", "Hello", "x"), ErrNoRecipient)
}

func TestResetBody(t *testing.T) {
	body, err := ResetBody("Asha <script>", "http://portal.local/reset-password/", "abc123", "1 hour")
	require.NoError(t, err)

	assert.Contains(t, body, `href="http://portal.local/reset-password/abc123"`)
	assert.Contains(t, body, "1 hour")
	assert.NotContains(t, body, "<script>")
}
