package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"zenithcloud.org/internal/auth"
	"zenithcloud.org/internal/httpapi"
	"zenithcloud.org/internal/obs"
	"zenithcloud.org/internal/store/pg"
)

var version = "0.3.0"

func main() {
	_ = godotenv.Load()
	obs.Init()
	obs.InitBuildInfo("auth-service", version)

	dsn := os.Getenv("ZC_AUTH_PG_DSN")
	if dsn == "" {
		log.Fatal("missing DSN: set ZC_AUTH_PG_DSN")
	}
	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	secret := auth.ResolveSecret(os.Getenv("ZC_JWT_SECRET"))
	ttl := 24 * time.Hour
	if raw := os.Getenv("ZC_JWT_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("parse ZC_JWT_TTL: %v", err)
		}
		ttl = parsed
	}
	tokens, err := auth.NewTokenService(secret, auth.WithTTL(ttl))
	if err != nil {
		log.Fatalf("init token service: %v", err)
	}
	svc, err := auth.NewService(store.Users(), tokens)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	api := httpapi.NewAuthAPI(svc, httpapi.ReadyProbe{DB: store.DB()}, version)

	addr := os.Getenv("ZC_AUTH_ADDR")
	if addr == "" {
		addr = ":8081"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting auth-service %s on %s", version, srv.Addr)

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
	_ = store.Close()
	log.Println("Stopped")
}
