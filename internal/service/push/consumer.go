package push

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

// TicketEventConsumer 消费工单消息事件并推送给本节点在线的工单所有者
type TicketEventConsumer struct {
	reader  *kafka.Reader
	hub     *Hub
	wg      sync.WaitGroup
	stopped atomic.Bool
}

func NewTicketEventConsumer(reader *kafka.Reader, hub *Hub) *TicketEventConsumer {
	return &TicketEventConsumer{reader: reader, hub: hub}
}

// Start 开始消费，长期运行直到 ctx 取消或 Stop 被调用
func (c *TicketEventConsumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", c.reader.Config().Topic).Msg("ticket event consumer started")
		for {
			if c.stopped.Load() {
				return
			}
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("ticket event consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not read ticket event, retrying")
				time.Sleep(time.Second)
				continue
			}

			msgCtx := mq.ExtractTraceContext(ctx, msg.Headers)
			c.deliver(msgCtx, msg)

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit ticket event offset")
			}
		}
	}()
	return nil
}

// Stop 优雅停止消费者
func (c *TicketEventConsumer) Stop(ctx context.Context) {
	c.stopped.Store(true)
	c.reader.Close()
	c.wg.Wait()
	logger.Ctx(ctx).Info().Msg("ticket event consumer stopped")
}

// deliver 把事件推给工单所有者。管理员的回复推给客户；
// 客户自己的消息不用推回去。用户不在本节点时静默跳过，
// 连到其他节点的用户由那个节点的消费组实例处理。
func (c *TicketEventConsumer) deliver(ctx context.Context, msg kafka.Message) {
	var event supportdomain.TicketMessageAdded
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("malformed ticket event, dropping")
		return
	}
	if !event.IsAdmin {
		return
	}

	if delivered := c.hub.Push(event.UserID, msg.Value); delivered {
		logger.Ctx(ctx).Info().
			Str("ticket_id", event.TicketID).
			Str("user_id", event.UserID).
			Msg("ticket message pushed")
	}
}
