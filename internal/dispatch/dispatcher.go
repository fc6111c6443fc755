// Package dispatch orchestrates the two flows of the bot: admin upload into
// the vault with link announcement, and gated delivery of vaulted content
// with expiry tracking.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mymmrac/telego"

	"tg-vaultgate/internal/config"
	"tg-vaultgate/internal/deeplink"
	"tg-vaultgate/internal/logger"
	"tg-vaultgate/internal/models"
)

// Gate decides whether a user may receive content.
type Gate interface {
	IsMember(ctx context.Context, userID int64) bool
}

// Ledger records delivered copies for later expiry.
type Ledger interface {
	Create(record *models.DeliveryRecord) error
}

// Dispatcher wires the vault, the ledger and the membership gate together.
type Dispatcher struct {
	transport   Transport
	ledger      Ledger
	gate        Gate
	previews    *models.PendingPreviewManager
	vault       config.VaultConfig
	retention   config.RetentionConfig
	botUsername string
}

// NewDispatcher creates a Dispatcher. All collaborators are injected so the
// protocol can be exercised with in-memory fakes.
func NewDispatcher(transport Transport, ledger Ledger, gate Gate, previews *models.PendingPreviewManager, cfg *config.Config, botUsername string) *Dispatcher {
	return &Dispatcher{
		transport:   transport,
		ledger:      ledger,
		gate:        gate,
		previews:    previews,
		vault:       cfg.Vault,
		retention:   cfg.Retention,
		botUsername: botUsername,
	}
}

// HandleUpload processes a media upload from an administrator: copy it into
// the vault channel, derive the deep link and announce it on the main
// channel. When the video carries no inline thumbnail the announcement is
// deferred until the admin supplies a preview image.
func (d *Dispatcher) HandleUpload(ctx context.Context, message telego.Message) error {
	adminID := message.From.ID
	if !d.vault.IsAdmin(adminID) {
		d.reply(ctx, message.Chat.ID, "🚫 You are not allowed to upload content.")
		return fmt.Errorf("%w: user %d", ErrUnauthorized, adminID)
	}

	video := message.Video
	if video == nil {
		d.reply(ctx, message.Chat.ID, "Please send a valid video.")
		return ErrInvalidContent
	}

	copied, err := d.transport.CopyMessage(ctx, &telego.CopyMessageParams{
		ChatID:     telego.ChatID{ID: d.vault.VaultChannelID},
		FromChatID: telego.ChatID{ID: message.Chat.ID},
		MessageID:  message.MessageID,
	})
	if err != nil {
		logger.Errorf("Vault copy failed for upload from admin %d: %v", adminID, err)
		d.reply(ctx, message.Chat.ID, "⚠️ Failed to store the video, please try again.")
		return fmt.Errorf("%w: %v", ErrVaultWriteFailed, err)
	}

	payload := deeplink.Encode(copied.MessageID)
	link := deeplink.StartLink(d.botUsername, payload)
	caption := fmt.Sprintf("🎬 <b>New Content</b>\n\n👉 <a href=\"%s\">Watch Now</a>", link)

	logger.Infof("Vaulted message %d from admin %d, payload %s", copied.MessageID, adminID, payload)

	if video.Thumbnail == nil {
		// No inline preview; park the announcement until the admin sends one.
		d.previews.Put(adminID, caption)
		d.reply(ctx, message.Chat.ID, "The video has no thumbnail. Send a photo to use as the preview image.")
		return nil
	}

	if err := d.announce(ctx, video.Thumbnail.FileID, caption); err != nil {
		d.reply(ctx, message.Chat.ID, "⚠️ Stored the video but failed to announce it.")
		return err
	}

	d.reply(ctx, message.Chat.ID, fmt.Sprintf("✅ Content vaulted and announced:\n%s", link))
	return nil
}

// HandlePreviewImage resolves a pending announcement with the photo an
// administrator just sent.
func (d *Dispatcher) HandlePreviewImage(ctx context.Context, message telego.Message) error {
	adminID := message.From.ID
	if !d.vault.IsAdmin(adminID) {
		d.reply(ctx, message.Chat.ID, "🚫 You are not allowed to upload content.")
		return fmt.Errorf("%w: user %d", ErrUnauthorized, adminID)
	}

	caption, ok := d.previews.Take(adminID)
	if !ok {
		d.reply(ctx, message.Chat.ID, "No upload is waiting for a preview image.")
		return ErrNoPendingPreview
	}

	if len(message.Photo) == 0 {
		// Put the caption back; the entry was not consumed by an image.
		d.previews.Put(adminID, caption)
		d.reply(ctx, message.Chat.ID, "Please send a photo to use as the preview image.")
		return ErrInvalidContent
	}

	// Telegram orders photo sizes smallest first
	photo := message.Photo[len(message.Photo)-1]

	if err := d.announce(ctx, photo.FileID, caption); err != nil {
		d.previews.Put(adminID, caption)
		d.reply(ctx, message.Chat.ID, "⚠️ Failed to announce, send the photo again.")
		return err
	}

	d.reply(ctx, message.Chat.ID, "✅ Content announced.")
	return nil
}

// HandleStart processes a /start invocation with an optional deep link
// payload. The membership gate runs first; a denied request is answered with
// a join prompt and nothing else, so the same link can be retried after
// joining.
func (d *Dispatcher) HandleStart(ctx context.Context, message telego.Message, payload string) error {
	userID := message.From.ID

	if !d.gate.IsMember(ctx, userID) {
		d.sendJoinPrompt(ctx, message.Chat.ID)
		return ErrNotAMember
	}

	if payload == "" {
		d.sendWelcome(ctx, message.Chat.ID)
		return nil
	}

	vaultMessageID, err := deeplink.Decode(payload)
	if err != nil {
		logger.Warningf("Undecodable payload %q from user %d", payload, userID)
		d.reply(ctx, message.Chat.ID, "⚠️ This link is invalid.")
		return err
	}

	copied, err := d.transport.CopyMessage(ctx, &telego.CopyMessageParams{
		ChatID:     telego.ChatID{ID: message.Chat.ID},
		FromChatID: telego.ChatID{ID: d.vault.VaultChannelID},
		MessageID:  vaultMessageID,
	})
	if err != nil {
		logger.Errorf("Delivery of vault message %d to user %d failed: %v", vaultMessageID, userID, err)
		d.reply(ctx, message.Chat.ID, "⚠️ Could not deliver the video, please try again later.")
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	d.reply(ctx, message.Chat.ID, fmt.Sprintf("⚠️ This video will be deleted in %s due to copyright.", humanTTL(d.retention.TTL)))

	record := &models.DeliveryRecord{
		ChatID:    message.Chat.ID,
		MessageID: copied.MessageID,
		ExpiresAt: time.Now().Add(d.retention.TTL),
	}
	if err := d.ledger.Create(record); err != nil {
		logger.Errorf("Ledger insert failed for delivery to user %d: %v", userID, err)
		// Compensate: an untracked copy would never expire, so take it back.
		if derr := d.transport.DeleteMessage(ctx, &telego.DeleteMessageParams{
			ChatID:    telego.ChatID{ID: message.Chat.ID},
			MessageID: copied.MessageID,
		}); derr != nil {
			logger.Errorf("Compensating delete of message %d in chat %d failed: %v", copied.MessageID, message.Chat.ID, derr)
		}
		d.reply(ctx, message.Chat.ID, "⚠️ Could not deliver the video, please try again later.")
		return fmt.Errorf("%w: ledger insert: %v", ErrDeliveryFailed, err)
	}

	logger.Infof("Delivered vault message %d to user %d, expires at %s", vaultMessageID, userID, record.ExpiresAt.Format(time.RFC3339))
	return nil
}

// announce posts the deep link with a preview image on the main channel.
func (d *Dispatcher) announce(ctx context.Context, photoFileID, caption string) error {
	_, err := d.transport.SendPhoto(ctx, &telego.SendPhotoParams{
		ChatID:    telego.ChatID{ID: d.vault.MainChannelID},
		Photo:     telego.InputFile{FileID: photoFileID},
		Caption:   caption,
		ParseMode: "HTML",
	})
	if err != nil {
		logger.Errorf("Announcement on channel %d failed: %v", d.vault.MainChannelID, err)
		return fmt.Errorf("announce: %w", err)
	}
	return nil
}

func (d *Dispatcher) sendJoinPrompt(ctx context.Context, chatID int64) {
	channelLink := fmt.Sprintf("https://t.me/%s", strings.TrimPrefix(d.vault.ForceJoinChannel, "@"))
	keyboard := &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			{
				{Text: "🔒 Join Channel", URL: channelLink},
			},
		},
	}

	_, err := d.transport.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:      telego.ChatID{ID: chatID},
		Text:        "🚫 You must join our channel first.",
		ReplyMarkup: keyboard,
	})
	if err != nil {
		logger.Warningf("Error sending join prompt to chat %d: %v", chatID, err)
	}
}

func (d *Dispatcher) sendWelcome(ctx context.Context, chatID int64) {
	var keyboard *telego.InlineKeyboardMarkup
	if d.vault.DeveloperUsername != "" {
		keyboard = &telego.InlineKeyboardMarkup{
			InlineKeyboard: [][]telego.InlineKeyboardButton{
				{
					{Text: "👨‍💻 Developer", URL: fmt.Sprintf("https://t.me/%s", d.vault.DeveloperUsername)},
				},
			},
		}
	}

	caption := "👋 Welcome! Open a content link to receive a video."

	var err error
	if d.vault.WelcomeImage != "" {
		params := &telego.SendPhotoParams{
			ChatID:  telego.ChatID{ID: chatID},
			Photo:   telego.InputFile{URL: d.vault.WelcomeImage},
			Caption: caption,
		}
		if keyboard != nil {
			params.ReplyMarkup = keyboard
		}
		_, err = d.transport.SendPhoto(ctx, params)
	} else {
		params := &telego.SendMessageParams{
			ChatID: telego.ChatID{ID: chatID},
			Text:   caption,
		}
		if keyboard != nil {
			params.ReplyMarkup = keyboard
		}
		_, err = d.transport.SendMessage(ctx, params)
	}
	if err != nil {
		logger.Warningf("Error sending welcome to chat %d: %v", chatID, err)
	}
}

// reply sends a plain text message, logging instead of propagating failures.
func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) {
	_, err := d.transport.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		logger.Warningf("Error sending reply to chat %d: %v", chatID, err)
	}
}

func humanTTL(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	minutes := int(d / time.Minute)
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
