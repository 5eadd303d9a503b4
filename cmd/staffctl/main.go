package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/caretrackhq/backend/internal/db"
	"github.com/caretrackhq/backend/internal/staff"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("set DB_DSN or DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	defer pool.Close()

	service := staff.NewService(staff.NewRepository(pool))

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("could not create staff account")
		}
	case "list":
		if err := runList(ctx, service); err != nil {
			log.Fatal().Err(err).Msg("could not list staff accounts")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  staffctl create -name <display name> -email <email> -role <role> -password <password>
  staffctl list`)
}

func runCreate(ctx context.Context, service *staff.Service, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	role := fs.String("role", "social_worker", "role name")
	password := fs.String("password", "", "initial password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile, err := service.Create(ctx, staff.CreateInput{
		DisplayName: *name,
		Email:       *email,
		Role:        *role,
		Password:    *password,
	})
	if err != nil {
		return err
	}

	log.Info().Str("uid", profile.UID).Str("role", profile.Role).Msg("staff account created")
	return nil
}

func runList(ctx context.Context, service *staff.Service) error {
	profiles, err := service.List(ctx)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		status := "active"
		if !p.Active {
			status = "disabled"
		}
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", p.UID, p.DisplayName, p.Email, p.Role, status)
	}
	return nil
}
