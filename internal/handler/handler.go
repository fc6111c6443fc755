package handler

import (
	"errors"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-vaultgate/internal/config"
	"tg-vaultgate/internal/dispatch"
	"tg-vaultgate/internal/logger"
)

var globalConfig *config.Config

// Initialize initializes the handler with configuration
func Initialize(cfg *config.Config) {
	globalConfig = cfg
}

// SetupMessageHandlers wires inbound updates to the dispatch protocol.
func SetupMessageHandlers(bh *th.BotHandler, bot *telego.Bot, dispatcher *dispatch.Dispatcher) {
	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		// Skip if no sender information or sender is a bot
		if message.From == nil || message.From.IsBot {
			return nil
		}

		// Everything this bot does happens in private chats
		if message.Chat.Type != "private" {
			return nil
		}

		return routeMessage(ctx, bot, dispatcher, message)
	})
}

func routeMessage(ctx *th.Context, bot *telego.Bot, dispatcher *dispatch.Dispatcher, message telego.Message) error {
	if handled, err := handleCommand(ctx, bot, dispatcher, message); handled {
		return err
	}

	if message.Video != nil {
		logReject(dispatcher.HandleUpload(ctx.Context(), message))
		return nil
	}

	if len(message.Photo) > 0 {
		logReject(dispatcher.HandlePreviewImage(ctx.Context(), message))
		return nil
	}

	// Anything else gets pointed at /help
	_, err := bot.SendMessage(ctx.Context(), &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: message.Chat.ID},
		Text:   "Please send /help to get usage instructions.",
	})
	return err
}

// logReject records a rejected request. Taxonomy errors already produced a
// user-facing reply at the point of origin, so they are only logged here and
// never bubble up to the update loop.
func logReject(err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, dispatch.ErrNotAMember),
		errors.Is(err, dispatch.ErrNoPendingPreview),
		errors.Is(err, dispatch.ErrUnauthorized),
		errors.Is(err, dispatch.ErrInvalidContent):
		logger.Infof("Request rejected: %v", err)
	default:
		logger.Warningf("Request failed: %v", err)
	}
}
