package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

// ErrDisabled is returned by Send when mail delivery is switched off.
var ErrDisabled = errors.New("mail delivery is disabled")

// Config holds mail provider settings.
type Config struct {
	Enable    bool   `json:"enable"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	User      string `json:"user"`
	Pass      string `json:"pass"`
	From      string `json:"from"`
	ReplyTo   string `json:"reply_to"`
	UseResend bool   `json:"use_resend"`
	ResendKey string `json:"resend_key"`
}

// Message is a single email to send.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender sends emails via SMTP or Resend.
type Sender struct {
	cfg            Config
	client         *http.Client
	resendEndpoint string
	sendMail       func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(cfg Config) *Sender {
	return &Sender{
		cfg:            cfg,
		client:         &http.Client{Timeout: 15 * time.Second},
		resendEndpoint: defaultResendEndpoint,
		sendMail:       smtp.SendMail,
	}
}

// Enabled reports whether Send delivers anything.
func (s *Sender) Enabled() bool { return s.cfg.Enable }

// Send dispatches an email. Uses Resend if configured, otherwise SMTP.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enable {
		return ErrDisabled
	}
	if len(msg.To) == 0 {
		return errors.New("mail has no recipients")
	}
	if s.cfg.UseResend && s.cfg.ResendKey != "" {
		return s.sendResend(ctx, msg)
	}
	return s.sendSMTP(msg)
}

func (s *Sender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.User
}

// sendSMTP sends via net/smtp. A message with a text part goes out as
// multipart/alternative.
func (s *Sender) sendSMTP(msg Message) error {
	host := s.cfg.Host
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	from := s.from()

	body := buildMIME(from, s.cfg.ReplyTo, msg)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, host)
	}
	return s.sendMail(addr, auth, from, msg.To, body)
}

func buildMIME(from, replyTo string, msg Message) []byte {
	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject)))
	if replyTo != "" {
		body.WriteString(fmt.Sprintf("Reply-To: %s\r\n", replyTo))
	}
	if msg.Text == "" {
		body.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		body.WriteString(msg.HTML)
		return body.Bytes()
	}

	boundary := "fox-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	body.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	body.WriteString(msg.Text)
	body.WriteString("\r\n--" + boundary + "\r\n")
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	body.WriteString(msg.HTML)
	body.WriteString("\r\n--" + boundary + "--\r\n")
	return body.Bytes()
}

// sendResend sends via the Resend HTTP API.
func (s *Sender) sendResend(ctx context.Context, msg Message) error {
	fields := map[string]interface{}{
		"from":    s.from(),
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	}
	if msg.Text != "" {
		fields["text"] = msg.Text
	}
	if s.cfg.ReplyTo != "" {
		fields["reply_to"] = s.cfg.ReplyTo
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("resend error %d: %s", resp.StatusCode, errResp.Message)
	}
	return nil
}

const newsletterTpl = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
</head>
<body style="background-color:#fff;margin:0 auto;font-family:ui-sans-serif,system-ui,-apple-system,BlinkMacSystemFont,Segoe UI,Roboto,Helvetica Neue,Arial,Noto Sans,sans-serif;padding:.5rem">
  <table align="center" width="100%" role="presentation" cellspacing="0" cellpadding="0" border="0" style="max-width:100%;border-radius:.375rem;margin:40px auto;padding:20px;width:550px;border:1px solid rgb(234,88,12)">
    <tbody>
      <tr><td>
        <h1 style="font-size:20px;text-align:center">{{.Subject}}</h1>
        <div style="font-size:14px;line-height:24px;margin:16px 0">{{.Body}}</div>
        {{if .DetailURL}}
        <p style="text-align:center;margin:32px 0">
          <a href="{{.DetailURL}}" target="_blank" style="text-decoration:none;display:inline-block;padding:12px 20px;background-color:rgb(234,88,12);border-radius:.25rem;color:#fff;font-size:12px;font-weight:600">Read on the site</a>
        </p>
        {{end}}
        <hr style="width:100%;border:none;border-top:1px solid #eaeaea" />
        <p style="font-size:10px;line-height:24px;margin:16px 0;text-align:center;color:rgb(156,163,175)">Sent automatically, please do not reply.<br />©{{year}} {{.SiteName}}{{if .UnsubscribeURL}} · <a href="{{.UnsubscribeURL}}" style="color:rgb(156,163,175)">Unsubscribe</a>{{end}}<br />{{.CampaignID}}</p>
      </td></tr>
    </tbody>
  </table>
</body>
</html>`

// NewsletterData is the data for newsletter emails. Body must already be
// sanitized.
type NewsletterData struct {
	SiteName       string
	Subject        string
	Body           template.HTML
	DetailURL      string
	UnsubscribeURL string
	CampaignID     string
}

func renderTemplate(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
	}).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderNewsletter renders the newsletter email body.
func RenderNewsletter(data NewsletterData) (string, error) {
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = "Fox Studio"
	}
	return renderTemplate(newsletterTpl, data)
}
