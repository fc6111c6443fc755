// Package gate implements the force-join membership check performed before
// any content is delivered.
package gate

import (
	"context"

	"github.com/mymmrac/telego"

	"tg-vaultgate/internal/logger"
)

// Transport is the slice of the bot API the gate needs.
type Transport interface {
	GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error)
}

// Checker verifies membership in the configured force-join channel.
type Checker struct {
	transport Transport
	channel   string
}

// NewChecker creates a membership checker for the given channel (e.g. "@mychannel").
func NewChecker(transport Transport, channel string) *Checker {
	return &Checker{
		transport: transport,
		channel:   channel,
	}
}

// IsMember reports whether the user satisfies the membership gate.
// Any lookup failure counts as not a member: the gate fails closed.
func (c *Checker) IsMember(ctx context.Context, userID int64) bool {
	member, err := c.transport.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{Username: c.channel},
		UserID: userID,
	})
	if err != nil {
		logger.Warningf("Membership lookup failed for user %d in %s: %v", userID, c.channel, err)
		return false
	}

	switch member.MemberStatus() {
	case telego.MemberStatusCreator, telego.MemberStatusAdministrator, telego.MemberStatusMember:
		return true
	}

	return false
}

// Channel returns the gated channel identifier.
func (c *Checker) Channel() string {
	return c.channel
}
