package notifier

import (
	"context"

	"github.com/krishg/billgate/internal/auth/entity"
)

// Noop never delivers. Useful for local development where the fallback
// surface is how the operator reads the code.
type Noop struct{}

// Deliver reports not delivered without doing anything.
func (Noop) Deliver(_ context.Context, _ *entity.Challenge) DispatchOutcome {
	return DispatchOutcome{Delivered: false}
}
