package router

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"farm-records/internal/adapters/recordstore/memory"
	"farm-records/internal/adapters/recordstore/postgres"
	"farm-records/internal/adapters/recordstore/remote"
	"farm-records/internal/domain/carcasses"
	"farm-records/internal/domain/companies"
	"farm-records/internal/domain/farms"
	"farm-records/internal/domain/plans"
	"farm-records/internal/domain/slaughter"
	"farm-records/internal/middleware"
	"farm-records/internal/platform/logger"
	"farm-records/internal/ports/auth"
	"farm-records/internal/ports/recordstore"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, se usa tal cual. Si no, se resuelve por env:
	// STORE_URL => remoto, DB_DSN => postgres, nada => in-memory.
	Store recordstore.Client

	Log logger.Logger // puede ser nil
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if opts.Log != nil {
		r.Use(middleware.RequestLog(opts.Log))
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	store := opts.Store
	if store == nil {
		store = storeFromEnv(opts.Log)
	}

	// Repos por entidad sobre el mismo client.
	farmsRepo := farms.NewRepo(store)
	companiesRepo := companies.NewRepo(store)
	plansRepos := plans.NewRepos(store)
	carcassesRepo := carcasses.NewRepo(store)
	slaughterRepo := slaughter.NewRepo(store)

	// Rutas: cada módulo hijo cuelga de /farms/{farmID} y además expone
	// su acceso por id en el nivel raíz.
	farms.RegisterRoutes(r, farmsRepo,
		companies.FarmRoutes(companiesRepo, farmsRepo),
		plans.FarmRoutes(plansRepos, farmsRepo),
		carcasses.FarmRoutes(carcassesRepo, farmsRepo),
		slaughter.FarmRoutes(slaughterRepo, farmsRepo),
	)
	companies.RegisterRoutes(r, companiesRepo)
	plans.RegisterRoutes(r, plansRepos)
	carcasses.RegisterRoutes(r, carcassesRepo)
	slaughter.RegisterRoutes(r, slaughterRepo)

	return r
}

// storeFromEnv resuelve el backend por env (para dev/handoff).
func storeFromEnv(log logger.Logger) recordstore.Client {
	if base := os.Getenv("STORE_URL"); base != "" {
		c, err := remote.NewClient(remote.Config{BaseURL: base, Timeout: 10 * time.Second})
		if err == nil {
			return c
		}
		if log != nil {
			log.Warn("store remoto no disponible, sigo con fallback", map[string]any{"error": err.Error()})
		}
	}

	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		st, err := openPostgres(dsn)
		if err == nil {
			return st
		}
		if log != nil {
			log.Warn("postgres no disponible, sigo con in-memory", map[string]any{"error": err.Error()})
		}
	}

	return memory.New()
}

func openPostgres(dsn string) (*postgres.Store, error) {
	db, err := postgres.Open(dsn)
	if err != nil {
		return nil, err
	}
	st := postgres.New(db)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}
