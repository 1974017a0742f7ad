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
	fulfillment "storefront/internal/service/fulfillment/domain"
	"storefront/internal/service/order/application"
)

// PackageEventConsumer 监听履约服务的包裹状态事件并驱动订单应用服务
type PackageEventConsumer struct {
	reader  *kafka.Reader
	appSvc  *application.OrderApplicationService
	wg      sync.WaitGroup
	stopped atomic.Bool
}

func NewPackageEventConsumer(reader *kafka.Reader, appSvc *application.OrderApplicationService) *PackageEventConsumer {
	return &PackageEventConsumer{reader: reader, appSvc: appSvc}
}

// Start 开始消费，长期运行直到 ctx 取消或 Stop 被调用
func (c *PackageEventConsumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", c.reader.Config().Topic).Msg("package event consumer started")
		for {
			if c.stopped.Load() {
				return
			}
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("package event consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not read package event, retrying")
				time.Sleep(time.Second)
				continue
			}

			msgCtx := mq.ExtractTraceContext(ctx, msg.Headers)
			if err := c.processMessage(msgCtx, msg); err != nil {
				// 订单不存在或数据库瞬时失败，留给下一轮重试前先记录
				logger.Ctx(msgCtx).Error().Err(err).Msg("failed to process package event")
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit package event offset")
			}
		}
	}()
	return nil
}

// Stop 优雅停止消费者
func (c *PackageEventConsumer) Stop(ctx context.Context) {
	c.stopped.Store(true)
	c.reader.Close()
	c.wg.Wait()
	logger.Ctx(ctx).Info().Msg("package event consumer stopped")
}

func (c *PackageEventConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event fulfillment.PackageStatusChanged
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}
	return c.appSvc.HandlePackageStatusEvent(ctx, &event)
}
