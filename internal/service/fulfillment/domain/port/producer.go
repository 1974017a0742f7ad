package port

import (
	"context"

	"storefront/internal/service/fulfillment/domain"
)

// PackageEventProducer 是包裹状态事件的出站端口
type PackageEventProducer interface {
	PublishStatusChanged(ctx context.Context, event *domain.PackageStatusChanged) error
}
