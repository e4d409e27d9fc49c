// Package notify delivers booking confirmations to the clinic's operations
// channel.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"clinic-api/internal/model"
	"clinic-api/internal/platform/httpclient"
	"clinic-api/pkg/retry"
)

// TelegramNotifier posts a message per confirmed booking. Delivery is best
// effort: the booking is already committed when the notifier runs, so every
// failure ends in the log, never in the caller.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
	log    *slog.Logger
	retry  retry.Config
}

// NewTelegramNotifier creates the notifier. The bot talks through the
// shared outbound HTTP client so its calls get the same logging and
// timeouts as the rest of the egress.
func NewTelegramNotifier(token string, chatID int64, log *slog.Logger) (*TelegramNotifier, error) {
	hc := httpclient.New(
		httpclient.WithTimeout(15*time.Second),
		httpclient.WithLogger(log),
	)
	b, err := bot.New(token,
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(15*time.Second, hc),
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 3
	cfg.InitialDelay = 2 * time.Second

	return &TelegramNotifier{bot: b, chatID: chatID, log: log, retry: cfg}, nil
}

// AppointmentConfirmed sends the booking summary, retrying transient
// failures a few times before giving up.
func (n *TelegramNotifier) AppointmentConfirmed(ctx context.Context, appt model.Appointment, doctor model.Doctor) {
	text := fmt.Sprintf(
		"New booking %s\nDoctor: %s (%s)\nPatient: %s, %s\nTime: %s",
		appt.AppointmentNumber,
		doctor.Name, doctor.Department,
		appt.PatientName, appt.Phone,
		appt.AppointmentDate.Format("2006-01-02 15:04"),
	)

	err := retry.Do(ctx, n.retry, func(ctx context.Context) error {
		_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: n.chatID,
			Text:   text,
		})
		return err
	})
	if err != nil {
		n.log.Error("booking notification failed",
			"appointment", appt.AppointmentNumber, "error", err)
		return
	}
	n.log.Info("booking notification sent", "appointment", appt.AppointmentNumber)
}
