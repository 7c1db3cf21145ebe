package router

import (
	"context"
	"net/http"
	"time"

	_ "cic-consultas/docs"
	ipadapter "cic-consultas/internal/adapters/iplookup"
	mem "cic-consultas/internal/adapters/storage/memory"
	pg "cic-consultas/internal/adapters/storage/postgres"
	"cic-consultas/internal/domain/acceso"
	"cic-consultas/internal/domain/consultas"
	"cic-consultas/internal/domain/profesionales"
	"cic-consultas/internal/middleware"
	"cic-consultas/internal/platform/lock"
	"cic-consultas/internal/platform/logger"
	"cic-consultas/internal/platform/metrics"
	"cic-consultas/internal/ports/auth"
	"cic-consultas/internal/ports/iplookup"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	Logger  logger.Logger
	Metrics *metrics.Metrics
	Swagger bool

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *pgxpool.Pool

	// Opcionales. Default: guard in-process, eventos al log, IP del request.
	Guard      lock.Guard
	Publicador consultas.Publicador
	IPResolver iplookup.Resolver

	PageSize int
}

// Router es el handler HTTP con los servicios armados (los tests los usan para sembrar datos).
type Router struct {
	http.Handler

	Consultas     *consultas.Service
	Profesionales *profesionales.Service
}

func NewRouter(opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.ClientIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ready", readyHandler(opts.DB))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	if opts.Swagger {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	var (
		consultaRepo    consultas.Repository
		profesionalRepo profesionales.Repository
	)
	if opts.DB != nil {
		consultaRepo = pg.NewConsultaRepo(opts.DB)
		profesionalRepo = pg.NewProfesionalRepo(opts.DB)
	} else {
		consultaRepo = mem.NewConsultaRepo()
		profesionalRepo = mem.NewProfesionalRepo()
	}

	// Services por módulo
	profSvc := profesionales.NewService(profesionalRepo, log.With(map[string]any{"module": "profesionales"}))

	consultaOpts := []consultas.Option{
		consultas.WithLogger(log.With(map[string]any{"module": "consultas"})),
		consultas.WithMetrics(opts.Metrics),
		consultas.WithPageSize(opts.PageSize),
	}
	if opts.Guard != nil {
		consultaOpts = append(consultaOpts, consultas.WithGuard(opts.Guard))
	}
	if opts.Publicador != nil {
		consultaOpts = append(consultaOpts, consultas.WithPublicador(opts.Publicador))
	}
	ipResolver := opts.IPResolver
	if ipResolver == nil {
		ipResolver = ipadapter.FromRequest{}
	}
	consultaOpts = append(consultaOpts, consultas.WithIPResolver(ipResolver))
	consultaSvc := consultas.NewService(consultaRepo, profesionales.NewDirectorio(profSvc), consultaOpts...)

	// Rutas por módulo
	acceso.RegisterRoutes(r)
	profesionales.RegisterRoutes(r, profSvc)
	consultas.RegisterRoutes(r, consultaSvc)

	return &Router{Handler: r, Consultas: consultaSvc, Profesionales: profSvc}
}

func readyHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
