package router

import (
	"net/http"

	mem "pets-gateway/internal/adapters/storage/memory"
	"pets-gateway/internal/domain/pets"
	"pets-gateway/internal/middleware"
	"pets-gateway/internal/notify"
	"pets-gateway/internal/platform/logger"
	"pets-gateway/internal/platform/metrics"

	_ "pets-gateway/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si no viene, usa el engine in-memory.
	Engine pets.Engine

	// Opcional: default content://com.example.android.pets/pets.
	Matcher *pets.Matcher

	// Opcional: registro de observers compartido con otros componentes.
	Registry *notify.Registry

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	engine := opts.Engine
	if engine == nil {
		engine = mem.NewStore()
	}
	matcher := opts.Matcher
	if matcher == nil {
		matcher = pets.MustMatcher(pets.DefaultAuthority)
	}
	// un registry del caller se usa tal cual: su OnPanic y sus observers son suyos
	registry := opts.Registry
	if registry == nil {
		registry = notify.NewRegistry()
		registry.OnPanic(func(sub notify.Subscription, recovered any) {
			log.Warn("observer panicked", map[string]any{"subscription": sub.ID, "uri": sub.URI, "panic": recovered})
		})
	}

	// registry propio por router: varios routers en tests no chocan
	promReg := prometheus.NewRegistry()
	rec, err := metrics.New(promReg)
	if err != nil {
		// solo falla por registros duplicados en un registry nuevo
		panic(err)
	}
	changes := &countingNotifier{next: registry, matcher: matcher, rec: rec, log: log}

	svc := pets.NewService(engine, matcher, changes,
		pets.WithLogger(log.With(map[string]any{"component": "dispatcher"})),
		pets.WithMetrics(rec),
	)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	pets.RegisterRoutes(r, svc)
	r.Get("/changes", notify.StreamHandler(registry))

	return r
}

// countingNotifier cuenta cada cambio por tipo de identificador y lo reenvía
// al registry.
type countingNotifier struct {
	next    notify.Notifier
	matcher *pets.Matcher
	rec     *metrics.Recorder
	log     logger.Logger
}

func (n *countingNotifier) Notify(uri string) {
	n.next.Notify(uri)

	m, _ := n.matcher.Match(uri)
	n.rec.ObserveChange(m.Kind.String())
	n.log.Debug("change", map[string]any{"uri": uri})
}
