package mailroom

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMbox = `From jo@example.com Mon Mar 10 08:00:00 2025
From: Jo Plumber <jo@acmeplumbing.com.au>
To: office@tradecrew.au
Subject: Urgent: burst pipe at the Smith job
Date: Mon, 10 Mar 2025 08:00:00 +1000
Message-ID: <msg-001@acmeplumbing.com.au>
Content-Type: text/plain; charset=UTF-8

There is a burst pipe flooding the laundry. Please send someone today.
From accounts@buildright.com.au Mon Mar 10 09:00:00 2025
From: accounts@buildright.com.au
To: office@tradecrew.au
Subject: Invoice INV-42
Date: Mon, 10 Mar 2025 09:00:00 +1000
Content-Type: multipart/alternative; boundary="BOUND"

--BOUND
Content-Type: text/plain; charset=UTF-8
Content-Transfer-Encoding: quoted-printable

Payment for invoice INV-42 is now due =E2=80=94 thanks!
--BOUND
Content-Type: text/html; charset=UTF-8

<html><body><p>Payment for invoice INV-42 is now due</p></body></html>
--BOUND--
`

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p, err := NewProcessor(log.New(io.Discard))
	require.NoError(t, err)
	return p
}

func writeMbox(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inbox.mbox")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestProcessMbox(t *testing.T) {
	p := newTestProcessor(t)
	path := writeMbox(t, testMbox)

	emails, err := p.ProcessMbox(context.Background(), path, "user-1")
	require.NoError(t, err)
	require.Len(t, emails, 2)

	first := emails[0]
	assert.Equal(t, "user-1", first.UserID)
	assert.Equal(t, "msg-001@acmeplumbing.com.au", first.EmailID)
	assert.Equal(t, "Urgent: burst pipe at the Smith job", first.Subject)
	assert.Contains(t, first.From, "jo@acmeplumbing.com.au")
	assert.Contains(t, first.Snippet, "burst pipe")
	assert.Equal(t, 2025, first.ReceivedAt.Year())

	second := emails[1]
	assert.Equal(t, "Invoice INV-42", second.Subject)
	// quoted-printable decoded, text/plain part preferred over HTML
	assert.Contains(t, second.Snippet, "invoice INV-42 is now due")
	assert.NotContains(t, second.Snippet, "<p>")
	// no Message-ID header, so the id is derived from stable headers
	assert.True(t, strings.HasPrefix(second.EmailID, "mbox-"), "got id %q", second.EmailID)
}

func TestProcessMbox_EmptyFileFails(t *testing.T) {
	p := newTestProcessor(t)
	path := writeMbox(t, "no mbox separators here\n")

	_, err := p.ProcessMbox(context.Background(), path, "user-1")
	assert.Error(t, err)
}

func TestEmailID_Deterministic(t *testing.T) {
	date := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	a := emailID("", date, "jo@example.com", "quote")
	b := emailID("", date, "jo@example.com", "quote")
	c := emailID("", date, "jo@example.com", "other subject")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "mbox-"))

	assert.Equal(t, "msg-1@x", emailID("<msg-1@x>", date, "", ""))
}

func TestCleanEmailText(t *testing.T) {
	raw := "Quote attached for the reno.\n" +
		"Check https://example.com/quote for details\n" +
		"--\n" +
		"Unsubscribe | Privacy Policy\n"

	got := cleanEmailText(raw)
	assert.Contains(t, got, "Quote attached")
	assert.NotContains(t, got, "https://")
	assert.NotContains(t, got, "Unsubscribe")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
}
