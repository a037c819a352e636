package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/joho/godotenv"

	"inkpost.backend/internal/config"
	"inkpost.backend/internal/domain/entities"
	domainrepo "inkpost.backend/internal/domain/repositories"
	"inkpost.backend/internal/infrastructure/datasources/postgres"
	"inkpost.backend/internal/infrastructure/repositories"
	"inkpost.backend/pkg/crypto"
)

// PasswordEnv lets the password stay out of shell history
const PasswordEnv = "STAFF_PASSWORD"

type createStaffDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (domainrepo.AccountRepository, io.Closer, error)
	hash    func(password string) (string, error)
	getenv  func(key string) string
	now     func() time.Time
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultCreateStaffDeps() createStaffDeps {
	return createStaffDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (domainrepo.AccountRepository, io.Closer, error) {
			sqlDB, err := postgres.NewConnection(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			db, err := postgres.NewGorm(sqlDB, cfg.Server.Env)
			if err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
			return repositories.NewAccountRepository(db), sqlDB, nil
		},
		hash:   crypto.HashPassword,
		getenv: os.Getenv,
		now:    time.Now,
		out:    os.Stdout,
	}
}

type staffInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (in staffInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email, validation.Length(0, 254)),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&in.FirstName, validation.Length(0, 150)),
		validation.Field(&in.LastName, validation.Length(0, 150)),
	)
}

func runCreateStaff(args []string, deps createStaffDeps) error {
	def := defaultCreateStaffDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.hash == nil {
		deps.hash = def.hash
	}
	if deps.getenv == nil {
		deps.getenv = def.getenv
	}
	if deps.now == nil {
		deps.now = def.now
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("create-staff", flag.ContinueOnError)
	emailFlag := fs.String("email", "", "staff email (required)")
	passwordFlag := fs.String("password", "", "staff password (defaults to $"+PasswordEnv+")")
	firstFlag := fs.String("first-name", "", "first name (optional)")
	lastFlag := fs.String("last-name", "", "last name (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	in := staffInput{
		Email:     entities.NormalizeEmail(*emailFlag),
		Password:  *passwordFlag,
		FirstName: *firstFlag,
		LastName:  *lastFlag,
	}
	if in.Password == "" {
		in.Password = deps.getenv(PasswordEnv)
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	hash, err := deps.hash(in.Password)
	if err != nil {
		return err
	}

	cfg := deps.loadCfg()
	accounts, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	account := &entities.Account{
		Email:           in.Email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		PasswordHash:    hash,
		IsActive:        true,
		IsEmailVerified: true,
		IsStaff:         true,
		DateJoined:      deps.now().UTC(),
	}
	if err := accounts.Create(context.Background(), account); err != nil {
		return fmt.Errorf("failed creating staff account %s: %w", in.Email, err)
	}

	_, _ = fmt.Fprintln(deps.out, "Created active staff account")
	_, _ = fmt.Fprintf(deps.out, "account_id=%d\n", account.ID)
	_, _ = fmt.Fprintf(deps.out, "email=%s\n", account.Email)
	return nil
}

func main() {
	if err := runCreateStaff(os.Args[1:], defaultCreateStaffDeps()); err != nil {
		log.Fatal(err)
	}
}
