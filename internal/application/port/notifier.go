package port

import "context"

// Notifier delivers alert text to an external channel. Send reports success
// only; transport errors stay behind this boundary.
type Notifier interface {
	Send(ctx context.Context, text string) bool
}
