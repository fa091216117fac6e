package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"agencydesk/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	tradeNames = []string{
		"Electrical", "Plumbing", "Carpentry", "Welding", "HVAC", "Masonry",
		"Painting", "Roofing", "Scaffolding", "Drywall", "Concrete", "Glazing",
	}

	regionNames = []string{
		"Auckland", "Wellington", "Christchurch", "Hamilton", "Tauranga",
		"Dunedin", "Palmerston North", "Napier", "Nelson", "Queenstown",
	}

	agencySuffixes = []string{
		"Staffing", "Labour Hire", "Recruitment", "Workforce", "Trades Group",
		"Personnel", "Crew", "Contracting",
	}
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateAdmin ensures a known admin account exists for local development.
func (f *Factory) CreateAdmin() (*models.User, error) {
	hashed, err := hashPassword("AdminPassword123!")
	if err != nil {
		return nil, err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@agencydesk.dev",
		Password: hashed,
		Role:     models.UserRoleAdmin,
	}
	err = f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(admin).Error
	if err != nil {
		return nil, err
	}
	if admin.ID == 0 {
		if err := f.db.Where("email = ?", admin.Email).First(admin).Error; err != nil {
			return nil, err
		}
	}
	return admin, nil
}

// CreateUsers creates n regular user accounts with a shared dev password.
func (f *Factory) CreateUsers(n int) ([]models.User, error) {
	hashed, err := hashPassword("UserPassword123!")
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		users = append(users, models.User{
			Username: fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last), f.r.Intn(1000)),
			Email:    fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), f.r.Intn(1000), gofakeit.DomainName()),
			Password: hashed,
			Role:     models.UserRoleUser,
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := f.db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateAgencies creates n agency listings with trade and region tags.
func (f *Factory) CreateAgencies(n int) ([]models.Agency, error) {
	trades, err := f.ensureTags(tradeNames)
	if err != nil {
		return nil, err
	}
	regions, err := f.ensureRegions(regionNames)
	if err != nil {
		return nil, err
	}

	agencies := make([]models.Agency, 0, n)
	for i := 0; i < n; i++ {
		company := gofakeit.Company()
		name := fmt.Sprintf("%s %s", company, agencySuffixes[f.r.Intn(len(agencySuffixes))])
		slug := slugify(fmt.Sprintf("%s-%d", name, i))
		domain := strings.ReplaceAll(strings.ToLower(company), " ", "") + ".co.nz"

		status := models.AgencyStatusActive
		if f.r.Intn(10) == 0 {
			status = models.AgencyStatusSuspended
		}

		agency := models.Agency{
			Name:         name,
			Slug:         slug,
			Website:      "https://" + domain,
			ContactEmail: "info@" + domain,
			ContactPhone: gofakeit.Phone(),
			Description:  gofakeit.Paragraph(1, 3, 8, " "),
			Status:       status,
			Trades:       pickTrades(f.r, trades),
			Regions:      pickRegions(f.r, regions),
		}
		agencies = append(agencies, agency)
	}
	if len(agencies) == 0 {
		return agencies, nil
	}
	if err := f.db.Create(&agencies).Error; err != nil {
		return nil, err
	}
	return agencies, nil
}

// CreateClaims creates claim requests in a realistic status mix. Roughly half
// stay pending so the review queue has work in it.
func (f *Factory) CreateClaims(users []models.User, agencies []models.Agency, n int) ([]models.ClaimRequest, error) {
	if len(users) == 0 || len(agencies) == 0 || n == 0 {
		return nil, nil
	}

	claimed := make(map[uint]bool, len(agencies))
	claims := make([]models.ClaimRequest, 0, n)
	for i := 0; i < n && i < len(agencies); i++ {
		agency := agencies[i]
		if claimed[agency.ID] {
			continue
		}
		claimed[agency.ID] = true

		user := users[f.r.Intn(len(users))]
		phone := gofakeit.Phone()
		position := gofakeit.JobTitle()

		// Matching the agency's domain half the time exercises both outcomes
		// of the email verification check.
		email := fmt.Sprintf("%s@%s", strings.ToLower(gofakeit.FirstName()), gofakeit.DomainName())
		emailVerified := false
		if f.r.Intn(2) == 0 {
			email = "owner@" + strings.TrimPrefix(agency.Website, "https://")
			emailVerified = true
		}

		claim := models.ClaimRequest{
			AgencyID:            agency.ID,
			UserID:              user.ID,
			BusinessEmail:       email,
			PhoneNumber:         &phone,
			PositionTitle:       &position,
			VerificationMethod:  models.VerificationMethodEmail,
			EmailDomainVerified: emailVerified,
			AdditionalNotes:     gofakeit.Sentence(12),
			Status:              models.ClaimStatusPending,
		}

		switch f.r.Intn(4) {
		case 0:
			claim.Status = models.ClaimStatusUnderReview
		case 1:
			claim.Status = models.ClaimStatusRejected
			reason := "We could not verify your association with this agency from the details provided."
			claim.RejectionReason = &reason
		}

		claims = append(claims, claim)
	}
	if len(claims) == 0 {
		return claims, nil
	}
	if err := f.db.Create(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

// CreateMessages seeds a handful of public messages per active agency.
func (f *Factory) CreateMessages(users []models.User, agencies []models.Agency) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	var messages []models.AgencyMessage
	for _, agency := range agencies {
		if agency.Status != models.AgencyStatusActive {
			continue
		}
		for i := 0; i < f.r.Intn(4); i++ {
			sender := users[f.r.Intn(len(users))]
			messages = append(messages, models.AgencyMessage{
				AgencyID:     agency.ID,
				SenderUserID: sender.ID,
				Body:         gofakeit.Question(),
				Status:       models.MessageStatusVisible,
			})
		}
	}
	if len(messages) == 0 {
		return 0, nil
	}
	if err := f.db.Create(&messages).Error; err != nil {
		return 0, err
	}
	return len(messages), nil
}

func (f *Factory) ensureTags(names []string) ([]models.Trade, error) {
	trades := make([]models.Trade, 0, len(names))
	for _, name := range names {
		trade := models.Trade{Name: name}
		if err := f.db.Where("name = ?", name).FirstOrCreate(&trade).Error; err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func (f *Factory) ensureRegions(names []string) ([]models.Region, error) {
	regions := make([]models.Region, 0, len(names))
	for _, name := range names {
		region := models.Region{Name: name}
		if err := f.db.Where("name = ?", name).FirstOrCreate(&region).Error; err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	return regions, nil
}

func pickTrades(r *rand.Rand, trades []models.Trade) []models.Trade {
	count := 1 + r.Intn(3)
	picked := make([]models.Trade, 0, count)
	seen := map[uint]bool{}
	for len(picked) < count {
		t := trades[r.Intn(len(trades))]
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		picked = append(picked, t)
	}
	return picked
}

func pickRegions(r *rand.Rand, regions []models.Region) []models.Region {
	count := 1 + r.Intn(2)
	picked := make([]models.Region, 0, count)
	seen := map[uint]bool{}
	for len(picked) < count {
		reg := regions[r.Intn(len(regions))]
		if seen[reg.ID] {
			continue
		}
		seen[reg.ID] = true
		picked = append(picked, reg)
	}
	return picked
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, c := range strings.ToLower(s) {
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			b.WriteRune(c)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
