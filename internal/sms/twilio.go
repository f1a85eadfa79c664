package sms

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(accountSID, authToken, fromNumber string, opts ...Option) *Client {
	c := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if credentials and a sending number are set.
func (c *Client) Configured() bool {
	return c.accountSID != "" && c.authToken != "" && c.fromNumber != ""
}

// SendVerificationCode texts a six-digit verification code to the number.
func (c *Client) SendVerificationCode(toNumber, code string) error {
	body := fmt.Sprintf("Your CityHelper verification code is %s. It expires in 10 minutes.", code)
	return c.sendMessage(toNumber, body)
}

func (c *Client) sendMessage(toNumber, body string) error {
	if !c.Configured() {
		return fmt.Errorf("sms client not configured: missing credentials")
	}

	to, err := NormalizeNumber(toNumber)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, c.accountSID)
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("twilio API error: status %d", resp.StatusCode)
	}

	return nil
}

// NormalizeNumber converts a phone number to E.164. Bare ten-digit numbers
// get a +1 country code; numbers already carrying a + pass through after
// digit validation.
func NormalizeNumber(raw string) (string, error) {
	hasPlus := strings.HasPrefix(strings.TrimSpace(raw), "+")

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()

	switch {
	case hasPlus && len(n) >= 10 && len(n) <= 15:
		return "+" + n, nil
	case len(n) == 10:
		return "+1" + n, nil
	case len(n) == 11 && n[0] == '1':
		return "+" + n, nil
	default:
		return "", fmt.Errorf("invalid phone number: %q", raw)
	}
}
