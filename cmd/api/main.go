package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"partydesk.org/internal/auth"
	"partydesk.org/internal/config"
	"partydesk.org/internal/httpapi"
	"partydesk.org/internal/obs"
	"partydesk.org/internal/party"
	"partydesk.org/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	registry := party.Default()

	var (
		db        *sql.DB
		userStore auth.UserStore
		records   party.Store
	)
	if cfg.Storage.DSN != "" {
		store, err := pg.Open(cfg.Storage.DSN, registry)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db = store.DB()
		records = store
		userStore = auth.NewPGUserStore(db)
	} else {
		// No DSN runs everything in memory; useful for local UI work.
		records = party.NewInMemory(registry)
		userStore = auth.NewMemUserStore()
	}

	svc, err := auth.NewService(userStore, cfg.JWT.Secret,
		auth.WithIssuer(cfg.JWT.Issuer),
		auth.WithAccessTTL(cfg.AccessTTL()))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(svc, records, registry, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting partydesk-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
