// Package main provides an operator tool for creating player accounts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lorencia/mmoserver/internal/config"
	"github.com/lorencia/mmoserver/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	username := flag.String("username", "", "username for the new account")
	password := flag.String("password", "", "password for the new account")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: accounts -username <name> -password <secret> [-config <path>]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewAccountRepository(pool.DB())
	acct, err := repo.Create(ctx, *username, *password)
	if err != nil {
		log.Fatalf("creating account: %v", err)
	}

	fmt.Printf("created account %q (id=%d)\n", acct.Username, acct.ID)
}
