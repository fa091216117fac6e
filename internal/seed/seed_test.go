package seed

import (
	"testing"

	"agencydesk/internal/database"
	"agencydesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

func TestFactoryCreatesDirectoryData(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db)

	admin, err := f.CreateAdmin()
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, admin.Role)

	// Idempotent on the second run.
	again, err := f.CreateAdmin()
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	users, err := f.CreateUsers(5)
	require.NoError(t, err)
	require.Len(t, users, 5)
	for _, u := range users {
		assert.Equal(t, models.UserRoleUser, u.Role)
		assert.NotEmpty(t, u.Email)
	}

	agencies, err := f.CreateAgencies(8)
	require.NoError(t, err)
	require.Len(t, agencies, 8)
	for _, a := range agencies {
		assert.NotEmpty(t, a.Slug)
		assert.NotEmpty(t, a.Trades)
		assert.NotEmpty(t, a.Regions)
	}

	claims, err := f.CreateClaims(users, agencies, 6)
	require.NoError(t, err)
	assert.NotEmpty(t, claims)
	for _, claim := range claims {
		if claim.Status == models.ClaimStatusRejected {
			require.NotNil(t, claim.RejectionReason)
		} else {
			assert.Nil(t, claim.RejectionReason)
		}
	}

	// One live claim max per agency.
	seen := map[uint]bool{}
	for _, claim := range claims {
		assert.False(t, seen[claim.AgencyID], "agency %d has multiple claims", claim.AgencyID)
		seen[claim.AgencyID] = true
	}

	_, err = f.CreateMessages(users, agencies)
	require.NoError(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-staffing-ltd", slugify("Acme Staffing, Ltd."))
	assert.Equal(t, "crewline-7", slugify("  Crewline #7 "))
	assert.Equal(t, "a-b", slugify("A--B"))
}
