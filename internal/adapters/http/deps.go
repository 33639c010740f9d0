package http

import (
	"github.com/nats-io/nats.go"

	"github.com/SomeLazyDayz/Backend-15-11/internal/adapters/postgres"
	"github.com/SomeLazyDayz/Backend-15-11/internal/adapters/valkey"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Donors    *usecases.DonorService
	Hospitals *usecases.HospitalService
	Alerts    *usecases.AlertService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
