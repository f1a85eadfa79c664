package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

const resendAPIURL = "https://api.resend.com/emails"

type Client struct {
	apiKey     string
	fromEmail  string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(apiKey, fromEmail string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// SendSignInCode emails a six-digit sign-in code.
func (c *Client) SendSignInCode(toEmail, code string) error {
	textBody := fmt.Sprintf("Your CityHelper sign-in code is %s.\n\nIt expires in 15 minutes. If you didn't request this, you can ignore this email.", code)
	htmlBody := fmt.Sprintf(
		`<p>Your CityHelper sign-in code is:</p><p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p><p>It expires in 15 minutes. If you didn't request this, you can ignore this email.</p>`,
		code,
	)
	return c.send(toEmail, "Your CityHelper sign-in code", htmlBody, textBody)
}

// SendWelcome sends the one-time welcome email after a user's first sign-in.
func (c *Client) SendWelcome(toEmail, name string) error {
	greeting := "Welcome to CityHelper"
	if name != "" {
		greeting = fmt.Sprintf("Welcome to CityHelper, %s", name)
	}
	textBody := fmt.Sprintf("%s!\n\nAdd your permits, registrations, and renewals and we'll remind you before anything expires.", greeting)
	htmlBody := fmt.Sprintf(
		`<p>%s!</p><p>Add your permits, registrations, and renewals and we'll remind you before anything expires.</p>`,
		greeting,
	)
	return c.send(toEmail, greeting, htmlBody, textBody)
}

func (c *Client) send(toEmail, subject, htmlBody, textBody string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing API key")
	}

	payload := resendEmail{
		From:    c.fromEmail,
		To:      []string{toEmail},
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", resendAPIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}

	return nil
}
