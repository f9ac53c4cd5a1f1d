// Command seed creates a demo company so a fresh database can accept documents.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/JaimeStill/signet/internal/companies"
	"github.com/JaimeStill/signet/internal/config"
	"github.com/JaimeStill/signet/internal/infrastructure"
	"github.com/JaimeStill/signet/pkg/database"
	"github.com/JaimeStill/signet/pkg/pagination"
)

const envSeedToken = "SIGNET_SEED_API_TOKEN"

func main() {
	var (
		name  = flag.String("name", "Demo Company", "Company name")
		token = flag.String("token", "", "Provider API token (defaults to "+envSeedToken+")")
	)
	flag.Parse()

	if *token == "" {
		*token = os.Getenv(envSeedToken)
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("database config: %v", err)
	}

	logger := infrastructure.NewLogger(os.Stderr, "info", "text")

	db, err := database.New(dbCfg, logger)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	conn := db.Connection()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), dbCfg.ConnTimeoutDuration()+10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		log.Fatalf("database ping: %v", err)
	}

	sys := companies.New(conn, logger, pagination.Config{DefaultPageSize: 50, MaxPageSize: 50})

	c, created, err := seed(ctx, sys, *name, *token)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	if created {
		logger.Info("demo company created", "id", c.ID, "name", c.Name)
	} else {
		logger.Info("demo company already exists", "id", c.ID, "name", c.Name)
	}
}

// seed creates the named company unless one with the same name exists.
func seed(ctx context.Context, sys companies.System, name, token string) (*companies.Company, bool, error) {
	name = strings.TrimSpace(name)

	existing, err := sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 50}, companies.Filters{Name: &name})
	if err != nil {
		return nil, false, err
	}
	for _, c := range existing.Data {
		if strings.EqualFold(c.Name, name) {
			return &c, false, nil
		}
	}

	c, err := sys.Create(ctx, companies.CreateCommand{Name: name, APIToken: token})
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}
