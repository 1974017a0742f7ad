package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/mq"
	"storefront/internal/service/fulfillment/domain"
)

// KafkaPackageEventProducer 把包裹状态事件发到 Kafka，订单服务消费
type KafkaPackageEventProducer struct {
	writer *kafka.Writer
}

func NewKafkaPackageEventProducer(brokers []string) *KafkaPackageEventProducer {
	return &KafkaPackageEventProducer{
		writer: mq.NewKafkaWriter(brokers, mq.TopicPackageStatus),
	}
}

// PublishStatusChanged 以订单 ID 为 Key，保证同一订单的包裹事件有序
func (p *KafkaPackageEventProducer) PublishStatusChanged(ctx context.Context, event *domain.PackageStatusChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode package status event")
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(event.OrderID), payload)
}

// Close 关闭底层 writer
func (p *KafkaPackageEventProducer) Close() error {
	return p.writer.Close()
}
