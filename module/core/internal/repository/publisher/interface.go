package publisher

import (
	"context"

	"github.com/iammanojeet/SHecurity/module/core/domain"
)

type AlertPublisher interface {
	PublishAlertEvent(ctx context.Context, ev *domain.AlertEvent) error
}
