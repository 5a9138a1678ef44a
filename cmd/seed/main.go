// seed inserts demo users and projects into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nbazarov/teamforge/internal/infrastructure/postgres"
	"github.com/nbazarov/teamforge/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "password123"

type userSpec struct {
	name  string
	email string
}

type projectSpec struct {
	ownerEmail  string
	name        string
	description string
	vacancies   []string
}

var users = []userSpec{
	{"Ann Demo", "ann@teamforge.local"},
	{"Bob Demo", "bob@teamforge.local"},
	{"Carol Demo", "carol@teamforge.local"},
}

var projects = []projectSpec{
	{"ann@teamforge.local", "Weather Bot", "Telegram bot with hourly forecasts", []string{"Go developer", "Designer"}},
	{"ann@teamforge.local", "Recipe Hub", "Community recipe sharing site", []string{"Frontend developer"}},
	{"bob@teamforge.local", "Budget Tracker", "Personal finance tracker", []string{"Backend developer", "Product manager", "QA engineer"}},
	{"carol@teamforge.local", "Side Quest", "Local volunteering marketplace", nil},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := postgres.Migrate(dbURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), usecase.PasswordHashCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	userIDs := make(map[string]string, len(users))
	for _, spec := range users {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO users (name, email, password_hash)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			spec.name, spec.email, string(hash),
		).Scan(&id)
		if err != nil {
			log.Fatalf("upsert user %s: %v", spec.email, err)
		}
		userIDs[spec.email] = id
	}

	var projectCount, vacancyCount int
	for _, spec := range projects {
		ownerID, ok := userIDs[spec.ownerEmail]
		if !ok {
			log.Fatalf("unknown owner %s", spec.ownerEmail)
		}

		var projectID string
		err := pool.QueryRow(ctx, `
			INSERT INTO projects (name, description, owner_id)
			VALUES ($1, $2, $3)
			RETURNING id`,
			spec.name, spec.description, ownerID,
		).Scan(&projectID)
		if err != nil {
			log.Fatalf("insert project %s: %v", spec.name, err)
		}
		projectCount++

		for _, title := range spec.vacancies {
			if _, err := pool.Exec(ctx, `
				INSERT INTO vacancies (project_id, title)
				VALUES ($1, $2)`,
				projectID, title,
			); err != nil {
				log.Fatalf("insert vacancy %s: %v", title, err)
			}
			vacancyCount++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Users:     %d (password %q)\n", len(users), seedPassword)
	fmt.Printf("  Projects:  %d\n", projectCount)
	fmt.Printf("  Vacancies: %d\n", vacancyCount)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  curl -s -X POST http://localhost:8080/auth/login \\")
	fmt.Println("    -H 'Content-Type: application/json' \\")
	fmt.Printf("    -d '{\"email\":\"ann@teamforge.local\",\"password\":\"%s\"}'\n", seedPassword)
	fmt.Println()
	fmt.Println("  export JWT=eyJ...  # token from the response")
	fmt.Println("  curl -s http://localhost:8080/projects | jq")
	fmt.Println("  curl -s -X POST http://localhost:8080/projects \\")
	fmt.Println("    -H \"Authorization: Bearer $JWT\" -H 'Content-Type: application/json' \\")
	fmt.Println("    -d '{\"name\":\"My Project\",\"vacancies\":[{\"title\":\"dev\"}]}'")
}
