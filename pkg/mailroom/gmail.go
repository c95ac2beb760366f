package mailroom

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

const gmailAPIBase = "https://gmail.googleapis.com/gmail/v1/users/me"

// Sync pulls a page of inbox messages through the Gmail REST API and
// returns them with the next page token ("" when exhausted). Messages
// that fail to fetch are logged and skipped.
func (p *Processor) Sync(ctx context.Context, token, userID string, maxResults int, pageToken string) ([]triage.RawEmail, string, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	c := &http.Client{Timeout: 30 * time.Second}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, p.gmailBaseURL+"/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	q := req.URL.Query()
	q.Set("maxResults", fmt.Sprintf("%d", maxResults))
	q.Set("q", "in:inbox")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("gmail list: %d %s", resp.StatusCode, b)
	}

	var list struct {
		Messages      []struct{ ID string } `json:"messages"`
		NextPageToken string                `json:"nextPageToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, "", err
	}

	var out []triage.RawEmail
	for _, m := range list.Messages {
		email, err := p.FetchMessage(ctx, c, token, userID, m.ID)
		if err != nil {
			p.logger.Error("fetch gmail message", "id", m.ID, "error", err)
			continue
		}
		out = append(out, email)
	}
	return out, list.NextPageToken, nil
}

// FetchMessage retrieves one Gmail message and flattens it into a
// triage.RawEmail.
func (p *Processor) FetchMessage(ctx context.Context, c *http.Client, token, userID, id string) (triage.RawEmail, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/messages/%s", p.gmailBaseURL, id), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.Do(req)
	if err != nil {
		return triage.RawEmail{}, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return triage.RawEmail{}, fmt.Errorf("fetch %s: %d", id, resp.StatusCode)
	}

	var msg struct {
		Snippet string `json:"snippet"`
		Payload struct {
			MimeType string `json:"mimeType"`
			Headers  []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"headers"`
			Body  struct{ Data string } `json:"body"`
			Parts []struct {
				MimeType string                `json:"mimeType"`
				Body     struct{ Data string } `json:"body"`
			} `json:"parts"`
		} `json:"payload"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return triage.RawEmail{}, err
	}

	h := map[string]string{}
	for _, v := range msg.Payload.Headers {
		h[v.Name] = v.Value
	}
	date, _ := mail.ParseDate(h["Date"])

	var plain, html string
	for _, part := range msg.Payload.Parts {
		switch {
		case part.MimeType == "text/plain" && plain == "":
			plain, _ = decodeBase64URL(part.Body.Data)
		case strings.HasPrefix(part.MimeType, "text/html") && html == "":
			raw, _ := decodeBase64URL(part.Body.Data)
			html = htmlToText(raw)
		}
	}
	if plain == "" && html == "" && msg.Payload.Body.Data != "" {
		switch {
		case strings.HasPrefix(msg.Payload.MimeType, "text/plain"):
			plain, _ = decodeBase64URL(msg.Payload.Body.Data)
		case strings.HasPrefix(msg.Payload.MimeType, "text/html"):
			raw, _ := decodeBase64URL(msg.Payload.Body.Data)
			html = htmlToText(raw)
		}
	}

	body := plain
	if body == "" {
		body = html
	}
	body = strings.TrimSpace(cleanEmailText(body))

	snippet := msg.Snippet
	if snippet == "" {
		snippet = truncateRunes(body, snippetRunes)
	}

	return triage.RawEmail{
		UserID:      userID,
		EmailID:     id,
		Subject:     h["Subject"],
		From:        h["From"],
		Snippet:     snippet,
		BodyPreview: truncateRunes(body, bodyPreviewRunes),
		ReceivedAt:  date,
	}, nil
}

func decodeBase64URL(s string) (string, error) {
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	b, err := base64.StdEncoding.DecodeString(s)
	return string(b), err
}
