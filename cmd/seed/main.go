package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/videotube/videotube-api/config"
	"github.com/videotube/videotube-api/pkg/helpers"
)

// Seeds two demo users, a couple of videos and a subscription edge so the
// channel profile and watch history endpoints have data locally.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword("password123")
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	seedUser := func(username, email, fullname string) string {
		var id string
		err := db.QueryRow(`
			INSERT INTO users (username, email, fullname, password_hash, avatar_url)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET fullname = EXCLUDED.fullname
			RETURNING id
		`, username, email, fullname, hash, "https://storage.googleapis.com/videotube-dev/avatars/default.png").Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", username, err)
		}
		return id
	}

	ana := seedUser("ana", "ana@example.com", "Ana Creator")
	ben := seedUser("ben", "ben@example.com", "Ben Viewer")

	var videoID string
	err = db.QueryRow(`
		INSERT INTO videos (owner_id, title, description, thumbnail_url, duration)
		VALUES ($1, 'First upload', 'Hello VideoTube', '', 42.5)
		RETURNING id
	`, ana).Scan(&videoID)
	if err != nil {
		log.Fatalf("failed to seed video: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2)
	`, ben, ana); err != nil {
		log.Fatalf("failed to seed subscription: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)
	`, ben, videoID); err != nil {
		log.Fatalf("failed to seed watch history: %v", err)
	}

	fmt.Printf("seeded users ana=%s ben=%s video=%s (password: password123)\n", ana, ben, videoID)
}
