package importer

import (
	"context"
	"strings"
	"testing"

	"agencydesk/internal/models"
	"agencydesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupImporter(t *testing.T) (*Importer, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(&models.Trade{}, &models.Region{}, &models.User{}, &models.Agency{})
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return NewImporter(repository.NewAgencyRepository(db)), db
}

const sampleCSV = `name,slug,website,contact_email,contact_phone,description,trades,regions
Acme Roofing,acme-roofing,https://acme-roofing.com,office@acme-roofing.com,415-555-0132,Commercial roofing crews,roofing,southwest
Crewline Electrical,crewline,crewline.example.com,,,Journeyman electricians,electrical;low-voltage,northwest
Bad Slug Co,Bad Slug!,,,,,,
No Contact Co,no-contact-co,,,,,,
`

func TestImporter_Validate(t *testing.T) {
	im, _ := setupImporter(t)

	summary, err := im.Validate(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Valid)
	assert.Equal(t, 1, summary.Invalid)
	require.Len(t, summary.Rows, 4)

	t.Run("CleanRow", func(t *testing.T) {
		row := summary.Rows[0]
		assert.True(t, row.Valid)
		assert.Empty(t, row.Errors)
		assert.Equal(t, "acme-roofing", row.Data["slug"])
	})

	t.Run("BadSlugReported", func(t *testing.T) {
		row := summary.Rows[2]
		assert.False(t, row.Valid)
		assert.NotEmpty(t, row.Errors)
	})

	t.Run("MissingContactIsWarningNotError", func(t *testing.T) {
		row := summary.Rows[3]
		assert.True(t, row.Valid)
		assert.NotEmpty(t, row.Warnings)
	})

	t.Run("WithWarningsCounted", func(t *testing.T) {
		// Rows 2-4 lack contact email+phone or website.
		assert.GreaterOrEqual(t, summary.WithWarnings, 2)
	})
}

func TestImporter_ValidateDuplicateSlugInFile(t *testing.T) {
	im, _ := setupImporter(t)

	csv := "name,slug\nFirst Co,same-slug\nSecond Co,same-slug\n"
	summary, err := im.Validate(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Valid)
	assert.Equal(t, 1, summary.Invalid)
	assert.False(t, summary.Rows[1].Valid)
}

func TestImporter_ValidateExistingSlug(t *testing.T) {
	im, db := setupImporter(t)
	require.NoError(t, db.Create(&models.Agency{Name: "Existing", Slug: "existing-co"}).Error)

	csv := "name,slug\nNewcomer,existing-co\n"
	summary, err := im.Validate(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, summary.Rows, 1)
	assert.False(t, summary.Rows[0].Valid)
	assert.Contains(t, strings.Join(summary.Rows[0].Errors, "; "), "already exists")
}

func TestImporter_ValidateHeaderErrors(t *testing.T) {
	im, _ := setupImporter(t)
	ctx := context.Background()

	_, err := im.Validate(ctx, strings.NewReader(""))
	assert.Error(t, err)

	_, err = im.Validate(ctx, strings.NewReader("name,nonsense\nA,B\n"))
	assert.Error(t, err)

	_, err = im.Validate(ctx, strings.NewReader("name,website\nA,b.com\n"))
	assert.Error(t, err, "slug column is required")
}

func TestImporter_ImportPersistsValidRowsOnly(t *testing.T) {
	im, db := setupImporter(t)

	summary, imported, err := im.Import(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, imported)
	assert.Equal(t, 3, summary.Valid)

	var count int64
	db.Model(&models.Agency{}).Count(&count)
	assert.EqualValues(t, 3, count)

	// Tags landed.
	var agency models.Agency
	require.NoError(t, db.Preload("Trades").Where("slug = ?", "crewline").First(&agency).Error)
	assert.Len(t, agency.Trades, 2)
}

func TestImporter_ImportRequiresValidRows(t *testing.T) {
	im, _ := setupImporter(t)

	csv := "name,slug\nBad Co,NO!\n"
	_, _, err := im.Import(context.Background(), strings.NewReader(csv))
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}
