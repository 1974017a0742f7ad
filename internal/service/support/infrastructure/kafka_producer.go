package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/mq"
	"storefront/internal/service/support/domain"
)

// KafkaTicketEventProducer 把工单消息事件发到 Kafka，推送网关消费
type KafkaTicketEventProducer struct {
	writer *kafka.Writer
}

func NewKafkaTicketEventProducer(brokers []string) *KafkaTicketEventProducer {
	return &KafkaTicketEventProducer{
		writer: mq.NewKafkaWriter(brokers, mq.TopicTicketMessage),
	}
}

// PublishMessageAdded 以工单所有者为 Key，同一用户的推送按序投递
func (p *KafkaTicketEventProducer) PublishMessageAdded(ctx context.Context, event *domain.TicketMessageAdded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode ticket message event")
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(event.UserID), payload)
}

// Close 关闭底层 writer
func (p *KafkaTicketEventProducer) Close() error {
	return p.writer.Close()
}
