package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/database"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/pkg/mq"
	pkgredis "storefront/internal/pkg/redis"
	"storefront/internal/service/order/application"
	"storefront/internal/service/order/infrastructure"
	"storefront/internal/service/order/infrastructure/adapter"
	"storefront/internal/service/order/infrastructure/rule"
	"storefront/internal/service/order/interfaces"
)

const (
	serviceName     = "order-service"
	consumerGroupID = "order-service-group"
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	tracer := otel.Tracer(serviceName)

	db, err := database.NewMySQL(cfg.Infra.Mysql.DSN,
		&infrastructure.OrderModel{},
		&infrastructure.OrderItemModel{},
		&infrastructure.WarrantyClaimModel{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	redisClient, err := pkgredis.NewClient(cfg.Infra.Redis.Addrs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	orderRepo := infrastructure.NewGormOrderRepository(db)
	claimRepo := infrastructure.NewGormWarrantyClaimRepository(db)
	cartRepo := infrastructure.NewRedisCartRepository(redisClient)

	// 网关凭证通过注入的 TokenProvider 携带，不走全局状态
	var tokens httpclient.TokenProvider
	if apiKey := os.Getenv("GATEWAY_API_KEY"); apiKey != "" {
		tokens = httpclient.NewStaticTokenProvider(apiKey)
	}
	httpClient := httpclient.NewClient(tracer, tokens)
	paymentGateway := adapter.NewPaymentHTTPAdapter(httpClient, cfg.Gateways.PaymentURL)

	returnPolicy, err := rule.NewCELReturnPolicy(cfg.App.ReturnPolicyExpr)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid return policy expression")
	}

	eventProducer := infrastructure.NewKafkaOrderEventProducer(cfg.Infra.Kafka.Brokers)
	defer eventProducer.Close()
	notifier := infrastructure.NewKafkaNotificationProducer(cfg.Infra.Kafka.Brokers)
	defer notifier.Close()

	appSvc := application.NewOrderApplicationService(
		orderRepo, cartRepo,
		time.Duration(cfg.App.ReturnWindowDays)*24*time.Hour,
		tracer,
		paymentGateway, returnPolicy, eventProducer, notifier,
	)
	warrantySvc := application.NewWarrantyApplicationService(claimRepo, orderRepo)
	handler := interfaces.NewOrderHandler(appSvc, warrantySvc, cartRepo)

	packageConsumer := interfaces.NewPackageEventConsumer(
		mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, mq.TopicPackageStatus, consumerGroupID),
		appSvc,
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		Workers: []func(ctx context.Context) error{
			func(ctx context.Context) error {
				if err := packageConsumer.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				packageConsumer.Stop(context.Background())
				return ctx.Err()
			},
		},
	})
}
