package datasource

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"strings"
	"time"

	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUser = "me"

// NewGmailService builds a Gmail client from an OAuth client secret file
// and a previously authorized token file.
func NewGmailService(ctx context.Context, credentialsFile, tokenFile string) (*gmail.Service, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file: %w", err)
	}

	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read token file %s: %w", tokenFile, err)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}
	return srv, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// GmailFetcher lists messages matching a Gmail search query.
type GmailFetcher struct {
	service    *gmail.Service
	query      string
	maxResults int64
	logger     *slog.Logger
}

// NewGmailFetcher creates a fetcher over service.
func NewGmailFetcher(service *gmail.Service, query string, maxResults int, logger *slog.Logger) *GmailFetcher {
	if maxResults <= 0 {
		maxResults = 25
	}
	return &GmailFetcher{
		service:    service,
		query:      query,
		maxResults: int64(maxResults),
		logger:     observability.OrDefault(logger),
	}
}

// FetchEmails implements MailFetcher.
func (g *GmailFetcher) FetchEmails(ctx context.Context) ([]inbox.Email, error) {
	call := g.service.Users.Messages.List(gmailUser).MaxResults(g.maxResults)
	if g.query != "" {
		call = call.Q(g.query)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	emails := make([]inbox.Email, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := g.service.Users.Messages.Get(gmailUser, ref.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.Id, err)
		}
		emails = append(emails, messageToEmail(msg))
	}

	g.logger.DebugContext(ctx, "fetched emails from Gmail", "count", len(emails))
	return emails, nil
}

func messageToEmail(msg *gmail.Message) inbox.Email {
	e := inbox.Email{
		ID:          msg.Id,
		Read:        true,
		Priority:    inbox.LevelLow,
		StressLevel: inbox.LevelLow,
	}

	for _, label := range msg.LabelIds {
		switch label {
		case "UNREAD":
			e.Read = false
		case "STARRED":
			e.Flagged = true
		case "CATEGORY_SOCIAL":
			e.Category = "social"
		case "CATEGORY_PROMOTIONS":
			e.Category = "newsletter"
		}
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch strings.ToLower(header.Name) {
			case "from":
				e.Sender = parseSender(header.Value)
			case "subject":
				e.Subject = header.Value
			case "date":
				if t, err := mail.ParseDate(header.Value); err == nil {
					e.Timestamp = t.UTC()
				}
			}
		}
		e.Body = extractBody(msg.Payload)
	}

	if e.Body == "" {
		e.Body = msg.Snippet
	}
	if e.Timestamp.IsZero() && msg.InternalDate > 0 {
		e.Timestamp = time.UnixMilli(msg.InternalDate).UTC()
	}
	return e
}

func parseSender(value string) inbox.Sender {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return inbox.Sender{Address: strings.TrimSpace(value)}
	}
	return inbox.Sender{Name: addr.Name, Address: addr.Address}
}

// extractBody returns the first text/plain part, depth first.
func extractBody(part *gmail.MessagePart) string {
	if part.Body != nil && part.Body.Data != "" &&
		(part.MimeType == "" || strings.HasPrefix(part.MimeType, "text/plain")) {
		if decoded, ok := decodeBase64URL(part.Body.Data); ok {
			return decoded
		}
	}
	for _, child := range part.Parts {
		if body := extractBody(child); body != "" {
			return body
		}
	}
	return ""
}

func decodeBase64URL(data string) (string, bool) {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded), true
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded), true
	}
	return "", false
}
