package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/customer-intake-api/internal/config"
	"github.com/customer-intake-api/internal/domain"
)

// maxErrorBody bounds how much of a provider error response is kept.
const maxErrorBody = 2048

// TwilioSender delivers WhatsApp template messages through the Twilio
// Messages REST API.
type TwilioSender struct {
	baseURL     string
	accountSID  string
	authToken   string
	from        string
	templateSID string
	httpClient  *http.Client
}

func NewTwilioSender(cfg *config.Config) *TwilioSender {
	return &TwilioSender{
		baseURL:     strings.TrimRight(cfg.TwilioAPIBaseURL, "/"),
		accountSID:  cfg.TwilioAccountSID,
		authToken:   cfg.TwilioAuthToken,
		from:        cfg.TwilioPhoneNumber,
		templateSID: cfg.TwilioTemplateSID,
		httpClient:  &http.Client{Timeout: cfg.TwilioTimeout},
	}
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (s *TwilioSender) Send(ctx context.Context, msg Message) error {
	templateSID := msg.TemplateID
	if templateSID == "" {
		templateSID = s.templateSID
	}
	if s.accountSID == "" || s.authToken == "" || s.from == "" || templateSID == "" {
		return fmt.Errorf("twilio credentials missing: %w", domain.ErrMessagingNotConfigured)
	}

	vars, err := json.Marshal(msg.Variables)
	if err != nil {
		return fmt.Errorf("encode content variables: %w", err)
	}
	form := url.Values{
		"To":               {"whatsapp:" + msg.To},
		"From":             {"whatsapp:" + s.from},
		"ContentSid":       {templateSID},
		"ContentVariables": {string(vars)},
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(s.accountSID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("twilio error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out twilioMessage
	if err := json.Unmarshal(body, &out); err == nil {
		slog.InfoContext(ctx, "whatsapp template sent", "to", msg.To, "sid", out.SID, "status", out.Status)
	}
	return nil
}
