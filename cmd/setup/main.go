package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/epsilon-academy/academy-backend/internal/cache"
	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/epsilon-academy/academy-backend/internal/database"
	"github.com/epsilon-academy/academy-backend/internal/logger"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"golang.org/x/term"
)

const instructions = `=== Epsilon Academy setup ===

1. Copy .env.example to .env and set DATABASE_URL, JWT_SECRET,
   ANON_KEY and SERVICE_ROLE_KEY.
2. Apply the schema:       go run ./cmd/migrate up
3. Create the first admin: go run ./cmd/setup
4. Optionally load demo data: go run ./cmd/seed-demo
5. Start the API:          go run ./cmd/server

Set SKIP_AUTH=true to run the API against the in-memory fixture data
without a database. Requests may then impersonate a role with the
X-Dev-Role header (admin, teacher or student).
`

func main() {
	var infoOnly bool
	var role string
	flag.BoolVar(&infoOnly, "info", false, "Print setup instructions and exit")
	flag.StringVar(&role, "role", string(model.RoleAdmin), "Role of the profile to create (admin, teacher, student)")
	flag.Parse()

	fmt.Print(instructions)
	if infoOnly {
		return
	}
	if !model.Role(role).Valid() {
		fmt.Printf("Error: unknown role %q\n", role)
		os.Exit(2)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	authService := service.NewAuthService(cfg, repository.NewProfileRepository(pool), cache.NewMemoryDenylist(), log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n=== Create %s profile ===\n", role)

	fmt.Print("Enter Full Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		fmt.Println("Error: Full name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	password := string(bytePassword)
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	session, err := authService.Signup(ctx, model.SignupRequest{
		Email:    email,
		Password: password,
		FullName: name,
		Role:     model.Role(role),
	}, true)
	if err != nil {
		if errors.Is(err, service.ErrDuplicate) {
			fmt.Printf("Error: a profile with email %s already exists\n", email)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create profile")
	}

	fmt.Printf("\nSuccess! %s '%s' (%s) created with ID: %s\n",
		session.Profile.Role, session.Profile.FullName, session.Profile.Email, session.Profile.ID)
}
