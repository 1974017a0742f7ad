package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/mq"
	"storefront/internal/service/order/domain"
)

// KafkaOrderEventProducer 把订单支付事件发到 Kafka，履约服务消费
type KafkaOrderEventProducer struct {
	writer *kafka.Writer
}

func NewKafkaOrderEventProducer(brokers []string) *KafkaOrderEventProducer {
	return &KafkaOrderEventProducer{
		writer: mq.NewKafkaWriter(brokers, mq.TopicOrderPaid),
	}
}

// PublishOrderPaid 以订单 ID 为 Key，保证同一订单的事件有序
func (p *KafkaOrderEventProducer) PublishOrderPaid(ctx context.Context, event *domain.OrderPaid) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode order paid event")
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(event.OrderID), payload)
}

// Close 关闭底层 writer
func (p *KafkaOrderEventProducer) Close() error {
	return p.writer.Close()
}

// KafkaNotificationProducer 把订单状态变更通知发到通知 Topic
type KafkaNotificationProducer struct {
	writer *kafka.Writer
}

func NewKafkaNotificationProducer(brokers []string) *KafkaNotificationProducer {
	return &KafkaNotificationProducer{
		writer: mq.NewKafkaWriter(brokers, mq.TopicNotification),
	}
}

// SendOrderStatusChanged 以用户 ID 为 Key，同一用户的通知按序投递
func (p *KafkaNotificationProducer) SendOrderStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode status change notification")
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(event.UserID), payload)
}

// Close 关闭底层 writer
func (p *KafkaNotificationProducer) Close() error {
	return p.writer.Close()
}
