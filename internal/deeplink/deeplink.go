// Package deeplink encodes vault message references into the payload carried
// by a t.me start link and back.
package deeplink

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const payloadPrefix = "get-"

// ErrMalformedPayload is returned when a payload is not of the form get-<id>.
var ErrMalformedPayload = errors.New("malformed deep link payload")

// Encode produces the start payload for a vault message ID.
func Encode(vaultMessageID int) string {
	return payloadPrefix + strconv.Itoa(vaultMessageID)
}

// Decode extracts the vault message ID from a start payload. The payload
// must carry the exact "get-" prefix followed by a base-10 integer; anything
// else is rejected, never guessed.
func Decode(payload string) (int, error) {
	rest, ok := strings.CutPrefix(payload, payloadPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPayload, payload)
	}

	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPayload, payload)
	}

	return id, nil
}

// StartLink builds the shareable deep link that opens the bot with a payload.
func StartLink(botUsername, payload string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, payload)
}
