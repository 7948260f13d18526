package di

import (
	"go.uber.org/zap"

	"sheethub/application/collab"
	"sheethub/application/ports"
	"sheethub/application/services"
	"sheethub/infrastructure/config"
	"sheethub/interfaces/http/rest"
	"sheethub/interfaces/ws"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     ports.DocumentStore
	Registry  *collab.Registry
	Engine    *collab.Engine
	Hub       *ws.Hub
	Relay     *ws.Relay
	WSHandler *ws.Handler
	Workbooks *services.WorkbookService
	Exports   *services.ExportService
	Router    *rest.Router
}
