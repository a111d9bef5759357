package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"zenithcloud.org/internal/migrate"
)

// dsnEnvVar maps the -service flag onto the matching DSN variable.
func dsnEnvVar(service string) string {
	if service == "auth" {
		return "ZC_AUTH_PG_DSN"
	}
	return "ZC_EMPLOYEE_PG_DSN"
}

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	var (
		service        = flag.String("service", "auth", "Target service schema: auth or employee")
		dsn            = flag.String("dsn", "", "PostgreSQL DSN (defaults to the service DSN variable)")
		migrationsPath = flag.String("migrations", "migrations", "Path to SQL migrations root")
		seedsPath      = flag.String("seeds", "seeds", "Path to SQL seeds root")
	)
	flag.Parse()

	if *service != "auth" && *service != "employee" {
		log.Fatalf("unknown service %q: want auth or employee", *service)
	}
	target := *dsn
	if target == "" {
		target = os.Getenv(dsnEnvVar(*service))
	}
	if target == "" {
		log.Fatalf("missing DSN: provide via -dsn or %s", dsnEnvVar(*service))
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|seed|status]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", target)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	mgr := migrate.NewManager(db,
		filepath.Join(*migrationsPath, *service),
		filepath.Join(*seedsPath, *service))

	switch flag.Arg(0) {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}
