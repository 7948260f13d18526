package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"sheethub/application/services"
	"sheethub/interfaces/http/rest/handlers"
	"sheethub/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	workbooks  *services.WorkbookService
	exports    *services.ExportService
	ws         http.Handler
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	workbooks *services.WorkbookService,
	exports *services.ExportService,
	ws http.Handler,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		workbooks:  workbooks,
		exports:    exports,
		ws:         ws,
		enableCORS: enableCORS,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	workbookHandler := handlers.NewWorkbookHandler(rt.workbooks, rt.exports, rt.logger)

	// Session lifecycle and import/export
	router.Post("/create", workbookHandler.CreateWorkbook)
	router.Get("/workbook/{shareCode}", workbookHandler.GetWorkbook)
	router.Post("/import/{shareCode}", workbookHandler.ImportWorkbook)
	router.Post("/import/{shareCode}/file", workbookHandler.ImportWorkbookFile)
	router.Post("/export/{shareCode}", workbookHandler.ExportWorkbook)

	// Exported files are served statically until the cleanup sweep
	// removes them.
	router.Handle("/exports/*", http.StripPrefix("/exports/",
		http.FileServer(http.Dir(rt.exports.Dir()))))

	// Legacy single-workbook routes, kept for pre-share-code clients
	router.Get("/", workbookHandler.GetDefault)
	router.Get("/init", workbookHandler.ResetDefault)
	router.Post("/export", workbookHandler.ExportDefault)

	// Collaboration channel
	router.Handle("/ws", rt.ws)

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
