package notification

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	orderdomain "storefront/internal/service/order/domain"
)

// Consumer 监听通知事件并驱动 Notifier
type Consumer struct {
	reader   *kafka.Reader
	notifier *Notifier
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewConsumer(reader *kafka.Reader, notifier *Notifier) *Consumer {
	return &Consumer{reader: reader, notifier: notifier}
}

// Start 开始消费，长期运行直到 ctx 取消或 Stop 被调用
func (c *Consumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", c.reader.Config().Topic).Msg("notification consumer started")
		for {
			if c.stopped.Load() {
				return
			}
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("notification consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not read notification event, retrying")
				time.Sleep(time.Second)
				continue
			}

			msgCtx := mq.ExtractTraceContext(ctx, msg.Headers)
			var event orderdomain.OrderStatusChanged
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Ctx(msgCtx).Error().Err(err).Msg("malformed notification event, dropping")
			} else {
				// 尽力而为：Notifier 内部消化所有失败
				c.notifier.HandleOrderStatusChanged(msgCtx, &event)
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit notification offset")
			}
		}
	}()
	return nil
}

// Stop 优雅停止消费者
func (c *Consumer) Stop(ctx context.Context) {
	c.stopped.Store(true)
	c.reader.Close()
	c.wg.Wait()
	logger.Ctx(ctx).Info().Msg("notification consumer stopped")
}
