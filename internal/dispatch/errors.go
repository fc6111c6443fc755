package dispatch

import "errors"

// Taxonomy of dispatch failures. All of them are converted to a user-facing
// reply at the point of origin; none terminate update handling.
var (
	ErrUnauthorized     = errors.New("user is not an administrator")
	ErrInvalidContent   = errors.New("unsupported media kind")
	ErrVaultWriteFailed = errors.New("copy into vault channel failed")
	ErrDeliveryFailed   = errors.New("copy to recipient failed")
	ErrNoPendingPreview = errors.New("no pending preview for this admin")
	ErrNotAMember       = errors.New("user has not joined the gated channel")
)
