package handler

import (
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-vaultgate/internal/dispatch"
)

// handleCommand processes /start and /help. Returns false when the message
// is not a command so media routing can take over.
func handleCommand(ctx *th.Context, bot *telego.Bot, dispatcher *dispatch.Dispatcher, message telego.Message) (bool, error) {
	text := strings.TrimSpace(message.Text)

	switch {
	case text == "/start":
		logReject(dispatcher.HandleStart(ctx.Context(), message, ""))
		return true, nil
	case strings.HasPrefix(text, "/start "):
		payload := strings.TrimSpace(strings.TrimPrefix(text, "/start "))
		logReject(dispatcher.HandleStart(ctx.Context(), message, payload))
		return true, nil
	case text == "/help":
		return true, sendHelpMessage(ctx, bot, message)
	}

	return false, nil
}

// sendHelpMessage sends help information
func sendHelpMessage(ctx *th.Context, bot *telego.Bot, message telego.Message) error {
	helpText := "<b>Content bot</b>\n\n" +
		"Open a shared content link to receive a video. " +
		"You must be a member of our channel; delivered videos are removed after the retention period.\n\n" +
		"<b>Commands</b>\n" +
		"/start - open a content link or show the welcome message\n" +
		"/help - this message"

	if globalConfig != nil && globalConfig.Vault.IsAdmin(message.From.ID) {
		helpText += "\n\nAdmins: send a video to vault and announce it. " +
			"If the video has no thumbnail, follow up with a photo for the preview."
	}

	_, err := bot.SendMessage(ctx.Context(), &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: message.Chat.ID},
		Text:      helpText,
		ParseMode: "HTML",
	})

	return err
}
