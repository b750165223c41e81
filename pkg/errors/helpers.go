package errors

import (
	"context"
)

// CheckContext returns an error when the context is canceled or timed out,
// wrapped with the Canceled code so callers can classify it uniformly.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(err, Canceled, operation+" canceled")
	}
	return nil
}
