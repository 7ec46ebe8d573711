package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/supsim/internal/core/service"
	"github.com/yndnr/supsim/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Supervisor is the simulated device state.
	Supervisor *service.Supervisor

	// Metrics serves /metrics; nil leaves it unrouted.
	Metrics http.Handler

	// Observer receives request metrics; may be nil.
	Observer RequestObserver

	// Logger for request logging.
	Logger *slog.Logger

	// GlobalRateLimit is the rate limit per client IP (requests/second,
	// 0 = unlimited).
	GlobalRateLimit int
}

// openRoutes authenticate inside the snapshot gate rather than up front.
var openRoutes = []string{
	"POST /snapshots/new/full",
	"GET /snapshots/new/full",
	"POST /snapshots/new/partial",
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(cfg.Supervisor, cfg.Metrics, log)

	// Order: Recover -> RequestID -> Metrics -> Audit -> RateLimit [-> Auth] -> Handler
	common := []Middleware{
		Recover(log),
		RequestID(log),
		Metrics(cfg.Observer),
		Audit(),
		RateLimit(cfg.GlobalRateLimit),
	}

	open := Chain(h, common...)
	protected := Chain(h, append(common, Auth(cfg.Supervisor.Auth))...)

	mux := http.NewServeMux()
	for _, pattern := range openRoutes {
		mux.Handle(pattern, open)
	}
	// Everything else, unknown paths included, needs the credential.
	mux.Handle("/", protected)

	return mux
}
