package dispatch

import (
	"context"

	"github.com/mymmrac/telego"
)

// Transport is the slice of the bot API the dispatch protocol needs.
// *telego.Bot satisfies it; tests substitute a mock.
type Transport interface {
	CopyMessage(ctx context.Context, params *telego.CopyMessageParams) (*telego.MessageID, error)
	DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	SendPhoto(ctx context.Context, params *telego.SendPhotoParams) (*telego.Message, error)
	GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error)
}
