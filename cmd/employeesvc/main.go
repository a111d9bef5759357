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

	"zenithcloud.org/internal/access"
	"zenithcloud.org/internal/auth"
	"zenithcloud.org/internal/authclient"
	"zenithcloud.org/internal/directory"
	"zenithcloud.org/internal/httpapi"
	"zenithcloud.org/internal/obs"
	"zenithcloud.org/internal/store/pg"
)

var version = "0.3.0"

func main() {
	_ = godotenv.Load()
	obs.Init()
	obs.InitBuildInfo("employee-service", version)

	dsn := os.Getenv("ZC_EMPLOYEE_PG_DSN")
	if dsn == "" {
		log.Fatal("missing DSN: set ZC_EMPLOYEE_PG_DSN")
	}
	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	authURL := os.Getenv("ZC_AUTH_SERVICE_URL")
	if authURL == "" {
		authURL = "http://localhost:8081"
	}
	registrar, err := authclient.New(authURL)
	if err != nil {
		log.Fatalf("init auth client: %v", err)
	}

	departments, err := directory.NewDepartmentService(store.Departments())
	if err != nil {
		log.Fatalf("init department service: %v", err)
	}
	employees, err := directory.NewEmployeeService(store.Employees(), departments, registrar)
	if err != nil {
		log.Fatalf("init employee service: %v", err)
	}
	engine, err := access.NewEngine(access.StoreDirectory{Employees: store.Employees()})
	if err != nil {
		log.Fatalf("init access engine: %v", err)
	}

	// Both services validate against the same signing secret.
	secret := auth.ResolveSecret(os.Getenv("ZC_JWT_SECRET"))
	tokens, err := auth.NewTokenService(secret)
	if err != nil {
		log.Fatalf("init token service: %v", err)
	}

	api := httpapi.NewEmployeeAPI(employees, departments, engine, tokens,
		httpapi.ReadyProbe{DB: store.DB()}, version)

	addr := os.Getenv("ZC_EMPLOYEE_ADDR")
	if addr == "" {
		addr = ":8082"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting employee-service %s on %s", version, srv.Addr)

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
