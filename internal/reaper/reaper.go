// Package reaper enforces the retention window: it periodically scans the
// delivery ledger and deletes every copy that has passed its expiry.
package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-vaultgate/internal/config"
	"tg-vaultgate/internal/logger"
	"tg-vaultgate/internal/models"
)

// Transport is the slice of the bot API the reaper needs.
type Transport interface {
	DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// Ledger is the durable record of outstanding deliveries.
type Ledger interface {
	FindDue(now time.Time) ([]models.DeliveryRecord, error)
	Remove(id uint) error
	BumpAttempts(id uint) error
	MarkDeadLetter(id uint) error
}

// Reaper deletes expired delivered copies. A record is only removed from the
// ledger once the platform-side deletion succeeded; failed deletions are
// retried on later cycles and dead-lettered after maxAttempts.
type Reaper struct {
	transport     Transport
	ledger        Ledger
	interval      time.Duration
	maxAttempts   int
	backupChannel string
}

// New creates a Reaper from configuration.
func New(transport Transport, ledger Ledger, cfg *config.Config) *Reaper {
	return &Reaper{
		transport:     transport,
		ledger:        ledger,
		interval:      cfg.Retention.ReaperInterval,
		maxAttempts:   cfg.Retention.MaxDeleteAttempts,
		backupChannel: cfg.Vault.BackupChannel,
	}
}

// Run executes reap cycles until the context is cancelled. A failing cycle
// is logged and retried on the next tick, never fatal.
func (r *Reaper) Run(ctx context.Context) {
	logger.Infof("Reaper started, interval %v, max delete attempts %d", r.interval, r.maxAttempts)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reaper stopped")
			return
		case <-ticker.C:
			if err := r.Cycle(ctx); err != nil {
				logger.Errorf("Reap cycle failed: %v", err)
			}
		}
	}
}

// Cycle scans the ledger once and reaps every due record independently.
func (r *Reaper) Cycle(ctx context.Context) error {
	due, err := r.ledger.FindDue(time.Now())
	if err != nil {
		return fmt.Errorf("scanning ledger: %w", err)
	}

	if len(due) > 0 {
		logger.Infof("Reaping %d expired deliveries", len(due))
	}

	for _, record := range due {
		r.reap(ctx, record)
	}

	return nil
}

// reap handles one due record: delete the delivered copy, notify the
// recipient, then forget the record. Deletion failure leaves the record for
// the next cycle so an outstanding copy is never silently dropped.
func (r *Reaper) reap(ctx context.Context, record models.DeliveryRecord) {
	err := r.transport.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: record.ChatID},
		MessageID: record.MessageID,
	})
	if err != nil {
		logger.Warningf("Failed to delete message %d in chat %d (attempt %d): %v",
			record.MessageID, record.ChatID, record.Attempts+1, err)

		if record.Attempts+1 >= r.maxAttempts {
			logger.Errorf("Giving up on message %d in chat %d after %d attempts, dead-lettering record %d",
				record.MessageID, record.ChatID, record.Attempts+1, record.ID)
			if derr := r.ledger.MarkDeadLetter(record.ID); derr != nil {
				logger.Errorf("Error dead-lettering record %d: %v", record.ID, derr)
			}
			return
		}

		if berr := r.ledger.BumpAttempts(record.ID); berr != nil {
			logger.Errorf("Error updating attempts for record %d: %v", record.ID, berr)
		}
		return
	}

	r.notify(ctx, record.ChatID)

	if err := r.ledger.Remove(record.ID); err != nil {
		// The copy is already gone; the retry next cycle will fail to delete
		// and eventually dead-letter, which an operator can clean up.
		logger.Errorf("Error removing record %d from ledger: %v", record.ID, err)
	}
}

// notify tells the recipient the copy was removed. Best effort only.
func (r *Reaper) notify(ctx context.Context, chatID int64) {
	text := "✅ Video deleted after the retention period."
	if r.backupChannel != "" {
		text = fmt.Sprintf("%s\nJoin %s for more!", text, r.backupChannel)
	}

	_, err := r.transport.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	if err != nil {
		logger.Warningf("Error notifying chat %d about deletion: %v", chatID, err)
	}
}
