package newsletter

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/fox-studio/site/internal/modules/article"
	pkgmail "github.com/fox-studio/site/internal/pkg/mail"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxRecipients  = 1000
	sendConcurrent = 4
)

var (
	errNoRecipients    = errors.New("at least one recipient is required")
	errTooMany         = fmt.Errorf("at most %d recipients per send", maxRecipients)
	errMailUnavailable = errors.New("mail delivery is disabled")
)

// Mailer delivers one message.
type Mailer interface {
	Send(ctx context.Context, msg pkgmail.Message) error
}

// Delivery is the outcome for one recipient.
type Delivery struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// Report summarizes a send. A failed recipient never stops the others.
type Report struct {
	CampaignID string     `json:"campaign_id"`
	Sent       int        `json:"sent"`
	Failed     int        `json:"failed"`
	Deliveries []Delivery `json:"deliveries"`
}

type Service struct {
	composer *Composer
	articles article.Source
	mailer   Mailer
	enabled  bool
	logger   *zap.Logger
}

func NewService(composer *Composer, articles article.Source, mailer Mailer, enabled bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{composer: composer, articles: articles, mailer: mailer, enabled: enabled, logger: logger}
}

// Draft is what an admin submits. Either Markdown or ArticleSlug is used,
// ArticleSlug winning when both are set.
type Draft struct {
	Subject     string   `json:"subject"`
	Markdown    string   `json:"markdown"`
	ArticleSlug string   `json:"article_slug"`
	Recipients  []string `json:"recipients"`
}

// Compose builds the campaign for a draft without sending it.
func (s *Service) Compose(ctx context.Context, d Draft) (*Campaign, error) {
	if slug := strings.TrimSpace(d.ArticleSlug); slug != "" {
		a, err := s.articles.GetArticle(ctx, slug)
		if err != nil {
			return nil, err
		}
		if subject := strings.TrimSpace(d.Subject); subject != "" {
			copied := *a
			copied.Title = subject
			a = &copied
		}
		return s.composer.ComposeArticle(a)
	}
	return s.composer.Compose(d.Subject, d.Markdown)
}

// Send composes d and mails it to each valid recipient separately.
// Malformed or duplicate addresses are reported without being attempted.
func (s *Service) Send(ctx context.Context, d Draft) (*Report, error) {
	if !s.enabled {
		return nil, errMailUnavailable
	}
	recipients, rejected := normalizeRecipients(d.Recipients)
	if len(recipients) == 0 && len(rejected) == 0 {
		return nil, errNoRecipients
	}
	if len(recipients) > maxRecipients {
		return nil, errTooMany
	}
	campaign, err := s.Compose(ctx, d)
	if err != nil {
		return nil, err
	}

	report := &Report{CampaignID: campaign.ID, Deliveries: rejected}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sendConcurrent)
	for _, to := range recipients {
		g.Go(func() error {
			err := s.mailer.Send(gctx, pkgmail.Message{
				To:      []string{to},
				Subject: campaign.Subject,
				HTML:    campaign.HTML,
				Text:    campaign.Text,
			})
			delivery := Delivery{Email: to, Sent: err == nil}
			if err != nil {
				delivery.Error = err.Error()
				s.logger.Warn("newsletter delivery failed",
					zap.String("campaign", campaign.ID),
					zap.String("to", to),
					zap.Error(err),
				)
			}
			mu.Lock()
			report.Deliveries = append(report.Deliveries, delivery)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, d := range report.Deliveries {
		if d.Sent {
			report.Sent++
		} else {
			report.Failed++
		}
	}
	s.logger.Info("newsletter sent",
		zap.String("campaign", campaign.ID),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func normalizeRecipients(raw []string) ([]string, []Delivery) {
	seen := make(map[string]struct{}, len(raw))
	var valid []string
	var rejected []Delivery
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		addr, err := mail.ParseAddress(r)
		if err != nil {
			rejected = append(rejected, Delivery{Email: r, Error: "invalid address"})
			continue
		}
		key := strings.ToLower(addr.Address)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, addr.Address)
	}
	return valid, rejected
}
