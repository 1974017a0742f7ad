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
	supportdomain "storefront/internal/service/support/domain"
)

// TicketConsumer 监听工单消息事件，把客服回复转成邮件通知。
// 与推送网关各自用独立消费组订阅同一个 Topic：网关负责在线推送，
// 这里负责离线可达的邮件。
type TicketConsumer struct {
	reader   *kafka.Reader
	notifier *Notifier
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewTicketConsumer(reader *kafka.Reader, notifier *Notifier) *TicketConsumer {
	return &TicketConsumer{reader: reader, notifier: notifier}
}

// Start 开始消费，长期运行直到 ctx 取消或 Stop 被调用
func (c *TicketConsumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", c.reader.Config().Topic).Msg("ticket notification consumer started")
		for {
			if c.stopped.Load() {
				return
			}
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("ticket notification consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not read ticket event, retrying")
				time.Sleep(time.Second)
				continue
			}

			msgCtx := mq.ExtractTraceContext(ctx, msg.Headers)
			var event supportdomain.TicketMessageAdded
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Ctx(msgCtx).Error().Err(err).Msg("malformed ticket event, dropping")
			} else {
				// 尽力而为：Notifier 内部消化所有失败
				c.notifier.HandleTicketMessage(msgCtx, &event)
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit ticket event offset")
			}
		}
	}()
	return nil
}

// Stop 优雅停止消费者
func (c *TicketConsumer) Stop(ctx context.Context) {
	c.stopped.Store(true)
	c.reader.Close()
	c.wg.Wait()
	logger.Ctx(ctx).Info().Msg("ticket notification consumer stopped")
}
