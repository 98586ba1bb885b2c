package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partydesk.org/internal/config"
	"partydesk.org/internal/console"
	"partydesk.org/internal/console/apiclient"
	"partydesk.org/internal/console/session"
	"partydesk.org/internal/obs"
	"partydesk.org/internal/party"
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

	api := apiclient.New(cfg.API.BaseURL)

	srvConsole, err := console.NewServer(api, party.Default(), console.Config{
		Cookies: session.CookieOptions{
			Name:   cfg.Console.Session.CookieName,
			Secure: cfg.Console.Session.Secure,
			TTL:    cfg.SessionTTL(),
		},
		LookupTTL: cfg.LookupTTL(),
		Version:   version,
	})
	if err != nil {
		log.Fatalf("console: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Console.Addr,
		Handler:           srvConsole.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting partydesk-console %s on %s (api %s)", version, srv.Addr, cfg.API.BaseURL)

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
	log.Println("Stopped")
}
