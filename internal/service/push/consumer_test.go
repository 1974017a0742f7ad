package push

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/mq"
)

func TestTicketEventConsumerStops(t *testing.T) {
	// broker 不可达：消费循环停在重试上，Stop 必须仍能让它退出
	reader := mq.NewKafkaReader([]string{"127.0.0.1:1"}, mq.TopicTicketMessage, "test-group")
	consumer := NewTicketEventConsumer(reader, NewHub("node-1", nil))

	require.NoError(t, consumer.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		consumer.Stop(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
