package notifier

import (
	"context"

	"github.com/iammanojeet/SHecurity/module/core/domain"
)

// Notifier is the outbound notification capability: send a text message with
// a map link to the position, then place a voice call, both to the same
// number. Implementations stop after the first failed sub-action and report
// the partial state in the returned Delivery alongside the error.
type Notifier interface {
	SendAlert(ctx context.Context, phone string, pos domain.Position) (domain.Delivery, error)
}
