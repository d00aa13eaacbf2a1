// Command main fills a development database with fake blog content.
package main

import (
	"context"
	"flag"
	"log"
	"strconv"
	"time"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/seed"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 50, "Number of posts to create")
	commentsPerPost := flag.Int("comments", 3, "Maximum comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 picks a random one)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	s := seed.NewSeeder(db)

	summary, err := s.Run(ctx, seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *commentsPerPost,
		ShouldClean:     *shouldClean,
		RandomSeed:      *randomSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d likes",
		len(summary.Users), summary.Posts, summary.Comments, summary.Likes)

	if len(summary.Users) > 0 {
		user := summary.Users[0]
		token, err := devToken(cfg.JWTSecret, user.ID)
		if err != nil {
			log.Fatalf("Failed to sign dev token: %v", err)
		}
		log.Printf("Dev token for %s (id %d), valid 24h:\n%s", user.Email, user.ID, token)
	}
}

func devToken(secret string, userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(secret))
}
