package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/database"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/fulfillment/application"
	"storefront/internal/service/fulfillment/infrastructure"
	"storefront/internal/service/fulfillment/infrastructure/adapter"
	"storefront/internal/service/fulfillment/interfaces"
	"storefront/internal/zookeeper"
)

const (
	serviceName     = "fulfillment-service"
	consumerGroupID = "fulfillment-service-group"
)

// 本网关签约的承运商
var supportedCarriers = []string{"ups", "fedex", "sf-express"}

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	tracer := otel.Tracer(serviceName)

	db, err := database.NewMySQL(cfg.Infra.Mysql.DSN, &infrastructure.PackageModel{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	packageRepo := infrastructure.NewGormPackageRepository(db)

	var tokens httpclient.TokenProvider
	if apiKey := os.Getenv("GATEWAY_API_KEY"); apiKey != "" {
		tokens = httpclient.NewStaticTokenProvider(apiKey)
	}
	httpClient := httpclient.NewClient(tracer, tokens)
	carrier := adapter.NewCarrierHTTPAdapter(httpClient, cfg.Gateways.CarrierURL, supportedCarriers)

	producer := infrastructure.NewKafkaPackageEventProducer(cfg.Infra.Kafka.Brokers)
	defer producer.Close()

	// 面单生成的跨实例互斥锁。ZooKeeper 未配置时单实例运行，退化为无锁。
	var zkConn *zookeeper.Conn
	if len(cfg.Infra.Zookeeper.Servers) > 0 {
		zkConn, err = zookeeper.NewConn(cfg.Infra.Zookeeper.Servers)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to zookeeper")
		}
	}

	appSvc := application.NewFulfillmentApplicationService(
		packageRepo, tracer, carrier, producer, zkConn, cfg.App.DefaultCarrier,
	)
	handler := interfaces.NewFulfillmentHandler(appSvc)

	orderPaidConsumer := interfaces.NewOrderPaidConsumer(
		mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, mq.TopicOrderPaid, consumerGroupID),
		appSvc,
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		Workers: []func(ctx context.Context) error{
			func(ctx context.Context) error {
				if err := orderPaidConsumer.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				orderPaidConsumer.Stop(context.Background())
				return ctx.Err()
			},
		},
	})
}
