package main

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/mq"
	"storefront/internal/pkg/session"
	"storefront/internal/service/push"
)

const serviceName = "push-gateway"

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	nodeID := serviceName + "-" + uuid.New().String()[:8]
	sessionMgr := session.NewManager(cfg.Infra.Redis.Addrs)
	hub := push.NewHub(nodeID, sessionMgr)

	// 每个节点都加入同一个消费组无法保证消息到达用户所在的节点，
	// 所以推送 Topic 按节点独立消费组订阅，事件广播到所有节点，
	// 由持有该用户连接的节点完成投递。
	consumer := push.NewTicketEventConsumer(
		mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, mq.TopicTicketMessage, nodeID),
		hub,
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8088,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/ws", hub.ServeWS)
		},
		Workers: []func(ctx context.Context) error{
			hub.Run,
			func(ctx context.Context) error {
				if err := consumer.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				consumer.Stop(context.Background())
				return ctx.Err()
			},
		},
	})
}
