package di

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"sheethub/application/collab"
	"sheethub/application/ports"
	"sheethub/application/services"
	"sheethub/infrastructure/config"
	dynamostore "sheethub/infrastructure/persistence/dynamodb"
	memorystore "sheethub/infrastructure/persistence/memory"
	sqlitestore "sheethub/infrastructure/persistence/sqlite"
	"sheethub/interfaces/http/rest"
	"sheethub/interfaces/ws"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDocumentStore creates the document store selected by STORE_DRIVER
func ProvideDocumentStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.DocumentStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return memorystore.NewDocumentStore(), nil
	case config.StoreDriverSQLite:
		return sqlitestore.Open(cfg.SQLitePath)
	case config.StoreDriverDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		return dynamostore.NewDocumentStore(client, cfg.DynamoDBTable, logger), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// ProvideRegistry creates the presence registry
func ProvideRegistry(logger *zap.Logger) *collab.Registry {
	return collab.NewRegistry(logger)
}

// ProvideEngine creates the operation engine
func ProvideEngine(store ports.DocumentStore, logger *zap.Logger) *collab.Engine {
	return collab.NewEngine(store, logger)
}

// ProvideHub creates the connection hub
func ProvideHub(logger *zap.Logger) *ws.Hub {
	return ws.NewHub(logger)
}

// ProvideRelay creates the message relay
func ProvideRelay(hub *ws.Hub, engine *collab.Engine, registry *collab.Registry, store ports.DocumentStore, logger *zap.Logger) *ws.Relay {
	return ws.NewRelay(hub, engine, registry, store, logger)
}

// ProvideWSHandler creates the websocket entry point
func ProvideWSHandler(relay *ws.Relay, hub *ws.Hub, logger *zap.Logger) *ws.Handler {
	return ws.NewHandler(relay, hub, logger)
}

// ProvideWorkbookService creates the workbook service
func ProvideWorkbookService(store ports.DocumentStore, logger *zap.Logger) *services.WorkbookService {
	return services.NewWorkbookService(store, logger)
}

// ProvideExportService creates the export service
func ProvideExportService(store ports.DocumentStore, cfg *config.Config, logger *zap.Logger) *services.ExportService {
	return services.NewExportService(store, cfg.ExportDir, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	workbooks *services.WorkbookService,
	exports *services.ExportService,
	wsHandler *ws.Handler,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	var handler http.Handler = wsHandler
	return rest.NewRouter(workbooks, exports, handler, cfg.EnableCORS, logger)
}
