package interfaces

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/fulfillment/application"
	orderdomain "storefront/internal/service/order/domain"
)

// OrderPaidConsumer 监听订单支付事件并驱动履约应用服务创建包裹
type OrderPaidConsumer struct {
	reader  *kafka.Reader
	appSvc  *application.FulfillmentApplicationService
	wg      sync.WaitGroup
	stopped atomic.Bool
}

func NewOrderPaidConsumer(reader *kafka.Reader, appSvc *application.FulfillmentApplicationService) *OrderPaidConsumer {
	return &OrderPaidConsumer{reader: reader, appSvc: appSvc}
}

// Start 开始消费，长期运行直到 ctx 取消或 Stop 被调用
func (c *OrderPaidConsumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", c.reader.Config().Topic).Msg("order paid consumer started")
		for {
			if c.stopped.Load() {
				return
			}
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("order paid consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not read order paid event, retrying")
				time.Sleep(time.Second)
				continue
			}

			msgCtx := mq.ExtractTraceContext(ctx, msg.Headers)
			if err := c.processMessage(msgCtx, msg); err != nil {
				logger.Ctx(msgCtx).Error().Err(err).Msg("failed to process order paid event")
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit order paid offset")
			}
		}
	}()
	return nil
}

// Stop 优雅停止消费者
func (c *OrderPaidConsumer) Stop(ctx context.Context) {
	c.stopped.Store(true)
	c.reader.Close()
	c.wg.Wait()
	logger.Ctx(ctx).Info().Msg("order paid consumer stopped")
}

func (c *OrderPaidConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event orderdomain.OrderPaid
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}
	return c.appSvc.HandleOrderPaidEvent(ctx, &event)
}
