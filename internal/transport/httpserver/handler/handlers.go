package handler

import (
	portaldomain "partner-portal/internal/domain/portal"
	"partner-portal/pkg/logger"
)

type Handlers struct {
	Portal  *portaldomain.Service
	storage string
	log     logger.Logger
}

// New builds the HTTP handlers. storage names the active backing and is
// reported by the health check.
func New(portal *portaldomain.Service, storage string, log logger.Logger) *Handlers {
	return &Handlers{
		Portal:  portal,
		storage: storage,
		log:     log,
	}
}
