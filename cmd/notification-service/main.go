package main

import (
	"context"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/notification"
)

const (
	serviceName     = "notification-service"
	consumerGroupID = "notification-group"
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	tracer := otel.Tracer(serviceName)

	var tokens httpclient.TokenProvider
	if apiKey := os.Getenv("MAIL_API_KEY"); apiKey != "" {
		tokens = httpclient.NewStaticTokenProvider(apiKey)
	}
	httpClient := httpclient.NewClient(tracer, tokens)
	mailGateway := notification.NewMailHTTPAdapter(httpClient, cfg.Gateways.MailURL)

	notifier := notification.NewNotifier(mailGateway)
	consumer := notification.NewConsumer(
		mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, mq.TopicNotification, consumerGroupID),
		notifier,
	)
	ticketConsumer := notification.NewTicketConsumer(
		mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, mq.TopicTicketMessage, consumerGroupID),
		notifier,
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8084,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
		},
		Workers: []func(ctx context.Context) error{
			func(ctx context.Context) error {
				if err := consumer.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				consumer.Stop(context.Background())
				return ctx.Err()
			},
			func(ctx context.Context) error {
				if err := ticketConsumer.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				ticketConsumer.Stop(context.Background())
				return ctx.Err()
			},
		},
	})
}
