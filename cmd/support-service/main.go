package main

import (
	"github.com/rs/zerolog/log"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/database"
	"storefront/internal/service/support/application"
	"storefront/internal/service/support/infrastructure"
	"storefront/internal/service/support/interfaces"
)

const serviceName = "support-service"

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	db, err := database.NewMySQL(cfg.Infra.Mysql.DSN,
		&infrastructure.TicketModel{},
		&infrastructure.TicketMessageModel{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	ticketRepo := infrastructure.NewGormTicketRepository(db)

	producer := infrastructure.NewKafkaTicketEventProducer(cfg.Infra.Kafka.Brokers)
	defer producer.Close()

	appSvc := application.NewSupportApplicationService(ticketRepo, producer)
	handler := interfaces.NewSupportHandler(appSvc)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8083,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
