package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/club"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/database"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/league"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/rating"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const numMatches = 500

// Simplified config loading for the script. Only DB_NAME is required; the
// Turso variables are optional so the seeder can target a local file.
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	if value, ok := os.LookupEnv("DB_NAME"); ok {
		config["DB_NAME"] = value
	} else {
		log.Fatalf("Error: Required environment variable DB_NAME is not set.")
	}
	config["TURSO_PRIMARY_URL"] = os.Getenv("TURSO_PRIMARY_URL")
	config["TURSO_AUTH_TOKEN"] = os.Getenv("TURSO_AUTH_TOKEN")
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %s", err)
	}
	log.Info("Successfully connected to the database.")

	store := club.New(db)
	engine := rating.NewEngine(rating.DefaultParams())

	players := []league.Player{
		{UserID: "player-1", Name: "Seeder Player A"},
		{UserID: "player-2", Name: "Seeder Player B"},
		{UserID: "player-3", Name: "Seeder Player C"},
		{UserID: "player-4", Name: "Seeder Player D"},
		{UserID: "player-5", Name: "Seeder Player E"},
		{UserID: "player-6", Name: "Seeder Player F"},
		{UserID: "player-7", Name: "Seeder Player G"},
		{UserID: "player-8", Name: "Seeder Player H"},
	}
	for _, p := range players {
		store.AddPlayer(p.UserID, p.Name, engine.Params().DefaultRating)
	}
	log.Info("Ensured dummy players exist.", "count", len(players))

	log.Info("Replaying random matches through the rating engine...", "total", numMatches)
	startTime := time.Now()

	for i := 0; i < numMatches; i++ {
		match := randomMatch(players)

		if err := store.UpsertMatch(match); err != nil {
			log.Fatalf("Failed to upsert match: %s", err)
		}

		if match.IsDraw() {
			if err := store.ApplyMatchResult(match, nil); err != nil {
				log.Fatalf("Failed to record draw: %s", err)
			}
		} else {
			before, err := store.GetRatings(match.PlayerIDs())
			if err != nil {
				log.Fatalf("Failed to load ratings: %s", err)
			}
			changes := engine.ComputeUpdate(match, before)
			if err := store.ApplyMatchResult(match, changes); err != nil {
				log.Fatalf("Failed to apply match result: %s", err)
			}
		}

		if err := store.UpdateProcessingStatus(match.MatchID, league.StatusCompleted); err != nil {
			log.Fatalf("Failed to complete match: %s", err)
		}

		if (i+1)%100 == 0 {
			log.Info("Seeded matches", "completed", i+1, "total", numMatches)
		}
	}

	log.Info("Successfully seeded all matches.", "duration", time.Since(startTime))
}

// randomMatch builds a played doubles match with a random roster and a
// plausible pickleball score.
func randomMatch(players []league.Player) *league.Match {
	roster := make([]league.Player, len(players))
	copy(roster, players)
	rand.Shuffle(len(roster), func(i, j int) { roster[i], roster[j] = roster[j], roster[i] })

	winnerScore := 11
	loserScore := rand.Intn(10) // 0-9; extended games happen, draws do not
	if rand.Intn(2) == 0 {
		winnerScore, loserScore = loserScore, winnerScore
	}

	matchTime := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)

	return &league.Match{
		MatchID:   uuid.NewString(),
		OwnerID:   roster[0].UserID,
		OwnerName: roster[0].Name,
		Start:     matchTime.Unix(),
		End:       matchTime.Add(90 * time.Minute).Unix(),
		CreatedAt: matchTime.Add(-24 * time.Hour).Unix(),
		Teams: []league.Team{
			{ID: "t1", Players: []league.Player{roster[0], roster[1]}, Score: winnerScore},
			{ID: "t2", Players: []league.Player{roster[2], roster[3]}, Score: loserScore},
		},
		GameStatus:       league.GameStatusPlayed,
		ResultsStatus:    league.ResultsStatusConfirmed,
		ProcessingStatus: league.StatusResultAvailable,
		CourtName:        fmt.Sprintf("Court %d", rand.Intn(4)+1),
		Tenant:           league.Tenant{ID: "tenant-id-placeholder", Name: "Seeded Tenant"},
		MatchType:        league.MatchTypeDoubles,
	}
}
