package mail

import (
	"strings"

	"github.com/fox-studio/site/internal/config"
)

// BuildMailConfig maps the application's mail section onto a sender Config.
func BuildMailConfig(cfg config.MailConfig) Config {
	return Config{
		Enable:    cfg.Enable,
		Host:      cfg.Host,
		Port:      cfg.Port,
		User:      cfg.User,
		Pass:      cfg.Pass,
		From:      cfg.From,
		ReplyTo:   cfg.ReplyTo,
		UseResend: strings.TrimSpace(cfg.ResendKey) != "",
		ResendKey: strings.TrimSpace(cfg.ResendKey),
	}
}
