// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumAgencies int
	NumClaims   int
	ShouldClean bool
}

// Seed populates the database with demo directory data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users, %d agencies, %d claims...",
		opts.NumUsers, opts.NumAgencies, opts.NumClaims)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	admin, err := f.CreateAdmin()
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("admin account ready: %s", admin.Email)

	users, err := f.CreateUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	agencies, err := f.CreateAgencies(opts.NumAgencies)
	if err != nil {
		return fmt.Errorf("failed to create agencies: %w", err)
	}
	log.Printf("%d agencies created", len(agencies))

	claims, err := f.CreateClaims(users, agencies, opts.NumClaims)
	if err != nil {
		return fmt.Errorf("failed to create claims: %w", err)
	}
	log.Printf("%d claim requests created", len(claims))

	messages, err := f.CreateMessages(users, agencies)
	if err != nil {
		return fmt.Errorf("failed to create messages: %w", err)
	}
	log.Printf("%d agency messages created", messages)

	log.Println("Database seeding completed successfully")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE agency_messages, role_change_audits, claim_requests,
agency_trades, agency_regions, trades, regions, agencies, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func hashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
