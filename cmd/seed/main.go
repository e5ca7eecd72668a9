// seed inserts development sample data for local testing. Run with go run ./cmd/seed.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	commentdomain "snapfeed/backend/internal/comment/domain"
	commentrepo "snapfeed/backend/internal/comment/repository"
	"snapfeed/backend/internal/config"
	"snapfeed/backend/internal/db"
	postdomain "snapfeed/backend/internal/post/domain"
	postrepo "snapfeed/backend/internal/post/repository"
	"snapfeed/backend/internal/security"
	userdomain "snapfeed/backend/internal/user/domain"
	userrepo "snapfeed/backend/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	memberEmail  = "member@example.com"
	devPassword  = "password123"
	devUserID    = "7d4a3f1e-0000-4000-8000-000000000001"
	memberUserID = "7d4a3f1e-0000-4000-8000-000000000002"
	devPostID    = "7d4a3f1e-0000-4000-8000-000000000101"
	devCommentID = "7d4a3f1e-0000-4000-8000-000000000201"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	for _, u := range []*userdomain.User{
		{ID: devUserID, Email: devUserEmail, PasswordHash: passwordHash, Name: "Dev User", CreatedAt: now, UpdatedAt: now},
		{ID: memberUserID, Email: memberEmail, PasswordHash: passwordHash, Name: "Member User", CreatedAt: now, UpdatedAt: now},
	} {
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create user %s: %v", u.Email, err)
		}
	}

	posts := postrepo.NewPostgresRepository(conn)
	if err := posts.Insert(ctx, &postdomain.Post{
		ID:        devPostID,
		Title:     "Hello Snapfeed",
		Content:   "First post from the seed data.",
		Sender:    devUserID,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		log.Fatalf("create post: %v", err)
	}
	if _, _, err := posts.ToggleLike(ctx, devPostID, memberUserID); err != nil {
		log.Fatalf("like post: %v", err)
	}

	comments := commentrepo.NewPostgresRepository(conn)
	if err := comments.Insert(ctx, &commentdomain.Comment{
		ID:        devCommentID,
		PostID:    devPostID,
		Sender:    memberUserID,
		Content:   "Welcome aboard!",
		CreatedAt: now,
	}); err != nil {
		log.Fatalf("create comment: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev login: %s / %s\n", devUserEmail, devPassword)
	fmt.Printf("Member login: %s / %s\n", memberEmail, devPassword)
}
