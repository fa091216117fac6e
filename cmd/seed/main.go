// Command seed runs the database seeder for AgencyDesk.
package main

import (
	"flag"
	"log"

	"agencydesk/internal/config"
	"agencydesk/internal/database"
	"agencydesk/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 30, "Number of users to create")
	numAgencies := flag.Int("agencies", 60, "Number of agencies to create")
	numClaims := flag.Int("claims", 20, "Number of claim requests to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumAgencies: *numAgencies,
		NumClaims:   *numClaims,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
