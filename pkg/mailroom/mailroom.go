package mailroom

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jaytaylor/html2text"

	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

// Processor turns raw email sources (mbox exports, the Gmail API) into
// triage.RawEmail records ready for analysis.
type Processor struct {
	logger       *log.Logger
	gmailBaseURL string
}

func NewProcessor(logger *log.Logger) (*Processor, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Processor{logger: logger, gmailBaseURL: gmailAPIBase}, nil
}

const (
	snippetRunes     = 200
	bodyPreviewRunes = 1000
	processTimeout   = time.Second
)

func countEmails(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck

	const maxCap = 1024 * 1024
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, maxCap), maxCap)

	n := 0
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "From ") {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return n, nil
}

type (
	job struct {
		idx int
		raw string
	}
	result struct {
		idx   int
		email triage.RawEmail
		err   error
	}
)

// ProcessMbox parses every message in an mbox export. Messages that fail
// to parse or time out are counted and skipped; the rest come back in
// file order.
func (p *Processor) ProcessMbox(ctx context.Context, path, userID string) ([]triage.RawEmail, error) {
	total, err := countEmails(path)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("no emails in %s", path)
	}
	p.logger.Info("Found emails", "total", total, "workers", runtime.NumCPU())

	jobs := make(chan job, runtime.NumCPU())
	results := make(chan result, total)

	var wg sync.WaitGroup
	var fails atomic.Int64

	for w := 0; w < cap(jobs); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				jobCtx, cancel := context.WithTimeout(ctx, processTimeout)

				done := make(chan result, 1)
				go func(j job) {
					email, err := p.processEmail(j.raw, userID)
					done <- result{idx: j.idx, email: email, err: err}
				}(j)

				var out result
				select {
				case out = <-done:
				case <-jobCtx.Done():
					out = result{idx: j.idx, err: fmt.Errorf("timeout after %s", processTimeout)}
				}
				cancel()
				results <- out
			}
		}()
	}

	go func() {
		f, err := os.Open(path)
		if err != nil {
			p.logger.Error("open mbox", "path", path, "error", err)
			close(jobs)
			return
		}
		defer f.Close() //nolint:errcheck

		var buf bytes.Buffer
		r := bufio.NewReader(f)
		idx := 0
		in := false
		for {
			line, err := r.ReadString('\n')
			if err == io.EOF {
				if in {
					jobs <- job{idx: idx, raw: buf.String()}
				}
				break
			}
			if err != nil {
				p.logger.Error("read mbox", "error", err)
				break
			}
			if strings.HasPrefix(line, "From ") {
				if in {
					jobs <- job{idx: idx, raw: buf.String()}
					buf.Reset()
				}
				in = true
				idx++
			}
			if in {
				buf.WriteString(line)
			}
		}
		close(jobs)
	}()

	go func() { wg.Wait(); close(results) }()

	parsed := make(map[int]triage.RawEmail)
	for res := range results {
		if res.err != nil {
			fails.Add(1)
			continue
		}
		parsed[res.idx] = res.email
	}

	out := make([]triage.RawEmail, 0, len(parsed))
	for i := 1; i <= total; i++ {
		if email, ok := parsed[i]; ok {
			out = append(out, email)
		}
	}
	if fc := fails.Load(); fc > 0 {
		p.logger.Warn("Messages failed to parse", "count", fc, "path", path)
	}
	return out, nil
}

func (p *Processor) processEmail(raw, userID string) (triage.RawEmail, error) {
	// Drop the mbox "From " separator line; it is not a valid header.
	if strings.HasPrefix(raw, "From ") {
		if nl := strings.IndexByte(raw, '\n'); nl != -1 {
			raw = raw[nl+1:]
		}
	}

	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return triage.RawEmail{}, err
	}

	h := msg.Header
	date, _ := mail.ParseDate(h.Get("Date"))
	subject := decodeHeader(h.Get("Subject"))
	from := decodeHeader(h.Get("From"))

	body, err := extractBody(h, msg.Body)
	if err != nil {
		return triage.RawEmail{}, err
	}
	body = strings.TrimSpace(cleanEmailText(body))

	return triage.RawEmail{
		UserID:      userID,
		EmailID:     emailID(h.Get("Message-ID"), date, from, subject),
		Subject:     subject,
		From:        from,
		Snippet:     truncateRunes(body, snippetRunes),
		BodyPreview: truncateRunes(body, bodyPreviewRunes),
		ReceivedAt:  date,
	}, nil
}

// emailID prefers the provider's Message-ID; without one, a hash of the
// stable headers gives a deterministic id so reprocessing an mbox does
// not duplicate analyses.
func emailID(messageID string, date time.Time, from, subject string) string {
	messageID = strings.Trim(strings.TrimSpace(messageID), "<>")
	if messageID != "" {
		return messageID
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d-%s-%s", date.Unix(), from, subject)))
	return fmt.Sprintf("mbox-%x", sum)[:21]
}

func decodeHeader(value string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

func extractBody(h mail.Header, body io.Reader) (string, error) {
	mt, params, _ := mime.ParseMediaType(h.Get("Content-Type"))

	if strings.HasPrefix(mt, "multipart/") {
		mr := multipart.NewReader(body, params["boundary"])
		var plain, html string
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				continue
			}
			pt, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
			enc := strings.ToLower(part.Header.Get("Content-Transfer-Encoding"))
			var r io.Reader = part
			if enc == "quoted-printable" {
				r = quotedprintable.NewReader(r)
			}
			b, _ := io.ReadAll(r)

			switch {
			case strings.HasPrefix(pt, "text/plain") && plain == "":
				plain = string(b)
			case strings.HasPrefix(pt, "text/html") && html == "":
				html = htmlToText(string(b))
			}
			part.Close() //nolint:errcheck
		}
		if plain != "" {
			return plain, nil
		}
		return html, nil
	}

	enc := strings.ToLower(h.Get("Content-Transfer-Encoding"))
	r := body
	if enc == "quoted-printable" {
		r = quotedprintable.NewReader(r)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	if strings.Contains(strings.ToLower(mt), "html") {
		return htmlToText(string(b)), nil
	}
	return string(b), nil
}

func htmlToText(s string) string {
	t, err := html2text.FromString(s, html2text.Options{OmitLinks: true, TextOnly: true})
	if err != nil {
		return ""
	}
	return t
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

var (
	urlPattern        = regexp.MustCompile(`https?://[^\s<>"]+`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	entityPattern     = regexp.MustCompile(`&[a-zA-Z0-9#]+;`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	junkLinePattern   = regexp.MustCompile(`^[=\s\d\-\+\(\)\[\]<>'"]+$`)
	separatorPattern  = regexp.MustCompile(`--+`)
)

// cleanEmailText strips links, markup remnants and footer boilerplate so
// keyword matching runs against the message the sender actually wrote.
func cleanEmailText(content string) string {
	content = urlPattern.ReplaceAllString(content, "")

	lines := strings.Split(content, "\n")
	var cleaned []string
	footerStarted := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if !footerStarted && (strings.Contains(lower, "unsubscribe") ||
			strings.Contains(lower, "privacy policy") ||
			strings.Contains(lower, "this email was sent") ||
			strings.Contains(lower, "copyright") ||
			strings.Contains(lower, "©") ||
			separatorPattern.MatchString(line)) {
			footerStarted = true
			continue
		}
		if footerStarted {
			continue
		}

		line = tagPattern.ReplaceAllString(line, "")
		line = entityPattern.ReplaceAllString(line, "")
		line = whitespacePattern.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)

		if line == "" || junkLinePattern.MatchString(line) {
			continue
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
