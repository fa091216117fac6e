package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"agencydesk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicDirectoryHidesSuspendedAgencies(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)

	active := models.Agency{Name: "Visible Crew", Slug: "visible-crew", Status: models.AgencyStatusActive}
	suspended := models.Agency{Name: "Hidden Crew", Slug: "hidden-crew", Status: models.AgencyStatusSuspended}
	mustCreate(t, db, &active)
	mustCreate(t, db, &suspended)

	app := fiber.New()
	app.Get("/api/agencies", s.GetAgencies)
	app.Get("/api/agencies/:slug", s.GetAgencyBySlug)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/agencies", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Data []models.Agency `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "visible-crew", payload.Data[0].Slug)

	// Suspended agencies 404 on direct lookup too.
	detail, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/agencies/hidden-crew", nil))
	require.NoError(t, err)
	defer func() { _ = detail.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, detail.StatusCode)
}

func TestCreateAndUpdateAgencyHandlers(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	admin := models.User{Username: "agadmin", Email: "agadmin@example.com", Password: "pw", Role: models.UserRoleAdmin}
	mustCreate(t, db, &admin)

	app := testApp(admin.ID, func(app *fiber.App) {
		app.Post("/api/admin/agencies", s.CreateAgency)
		app.Patch("/api/admin/agencies/:id", s.UpdateAgency)
	})

	resp := postJSON(t, app, "/api/admin/agencies", map[string]any{
		"name":    "Southern Trades",
		"slug":    "southern-trades",
		"website": "https://southerntrades.co.nz",
		"trades":  []string{"Electrical", "Plumbing"},
		"regions": []string{"Dunedin"},
	})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var agency models.Agency
	require.NoError(t, db.Preload("Trades").Preload("Regions").Where("slug = ?", "southern-trades").First(&agency).Error)
	assert.Len(t, agency.Trades, 2)
	assert.Len(t, agency.Regions, 1)
	assert.Equal(t, models.AgencyStatusActive, agency.Status)

	// Invalid slug is rejected.
	bad := postJSON(t, app, "/api/admin/agencies", map[string]any{
		"name": "Bad Slug Agency",
		"slug": "Bad Slug!",
	})
	defer func() { _ = bad.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	// Partial update leaves untouched fields alone.
	raw, _ := json.Marshal(map[string]any{"description": "Trades staffing for the lower South Island."})
	patchReq := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/admin/agencies/%d", agency.ID), bytes.NewReader(raw))
	patchReq.Header.Set("Content-Type", "application/json")
	patch, err := app.Test(patchReq)
	require.NoError(t, err)
	defer func() { _ = patch.Body.Close() }()
	require.Equal(t, http.StatusOK, patch.StatusCode)

	var updated models.Agency
	require.NoError(t, db.Preload("Trades").First(&updated, agency.ID).Error)
	assert.Equal(t, "Southern Trades", updated.Name)
	assert.Equal(t, "Trades staffing for the lower South Island.", updated.Description)
	assert.Len(t, updated.Trades, 2)
}

func TestDeleteAgencyBlockedByLiveClaim(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	admin := models.User{Username: "deleter", Email: "deleter@example.com", Password: "pw", Role: models.UserRoleAdmin}
	claimant := models.User{Username: "holder", Email: "holder@example.com", Password: "pw"}
	mustCreate(t, db, &admin)
	mustCreate(t, db, &claimant)

	agency := models.Agency{Name: "Contested", Slug: "contested", Status: models.AgencyStatusActive}
	mustCreate(t, db, &agency)
	claim := models.ClaimRequest{AgencyID: agency.ID, UserID: claimant.ID, BusinessEmail: "c@contested.example.com", Status: models.ClaimStatusUnderReview}
	mustCreate(t, db, &claim)

	app := testApp(admin.ID, func(app *fiber.App) {
		app.Delete("/api/admin/agencies/:id", s.DeleteAgency)
	})

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/agencies/%d", agency.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteUserConflictListsClaimedAgencies(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	admin := models.User{Username: "useradmin", Email: "useradmin@example.com", Password: "pw", Role: models.UserRoleAdmin}
	owner := models.User{Username: "agowner", Email: "agowner@example.com", Password: "pw", Role: models.UserRoleAgencyOwner}
	mustCreate(t, db, &admin)
	mustCreate(t, db, &owner)

	agency := models.Agency{Name: "Owned Agency", Slug: "owned-agency", Status: models.AgencyStatusActive, OwnerUserID: &owner.ID}
	mustCreate(t, db, &agency)

	app := testApp(admin.ID, func(app *fiber.App) {
		app.Delete("/api/admin/users/:id", s.DeleteUser)
	})

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", owner.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var payload struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Details struct {
			ClaimedAgencies []string `json:"claimed_agencies"`
		} `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "CONFLICT", payload.Code)
	assert.Equal(t, []string{"Owned Agency"}, payload.Details.ClaimedAgencies)

	// The account is still there.
	var still models.User
	assert.NoError(t, db.First(&still, owner.ID).Error)
}

func TestChangeUserRoleHandler(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	admin := models.User{Username: "roler", Email: "roler@example.com", Password: "pw", Role: models.UserRoleAdmin}
	target := models.User{Username: "promotee", Email: "promotee@example.com", Password: "pw"}
	mustCreate(t, db, &admin)
	mustCreate(t, db, &target)

	app := testApp(admin.ID, func(app *fiber.App) {
		app.Put("/api/admin/users/:id/role", s.ChangeUserRole)
		app.Get("/api/admin/users/:id/role-audit", s.GetUserRoleAudit)
	})

	raw, _ := json.Marshal(map[string]any{"role": "admin", "reason": "taking over moderation duty"})
	putReq := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", target.ID), bytes.NewReader(raw))
	putReq.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(putReq)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	audit, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/admin/users/%d/role-audit", target.ID), nil))
	require.NoError(t, err)
	defer func() { _ = audit.Body.Close() }()
	require.Equal(t, http.StatusOK, audit.StatusCode)

	var payload struct {
		Data []models.RoleChangeAudit `json:"data"`
	}
	require.NoError(t, json.NewDecoder(audit.Body).Decode(&payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, models.UserRoleUser, payload.Data[0].OldRole)
	assert.Equal(t, models.UserRoleAdmin, payload.Data[0].NewRole)
	assert.Equal(t, "taking over moderation duty", payload.Data[0].Reason)
}

func TestMessageModerationHandlers(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	admin := models.User{Username: "mod", Email: "mod@example.com", Password: "pw", Role: models.UserRoleAdmin}
	sender := models.User{Username: "poster", Email: "poster@example.com", Password: "pw"}
	mustCreate(t, db, &admin)
	mustCreate(t, db, &sender)

	agency := models.Agency{Name: "Message Board", Slug: "message-board", Status: models.AgencyStatusActive}
	mustCreate(t, db, &agency)
	msg := models.AgencyMessage{AgencyID: agency.ID, SenderUserID: sender.ID, Body: "Do you place apprentices?", Status: models.MessageStatusVisible}
	mustCreate(t, db, &msg)

	adminApp := testApp(admin.ID, func(app *fiber.App) {
		app.Post("/api/admin/messages/:id/hide", s.HideMessage)
		app.Post("/api/admin/messages/:id/flag", s.FlagMessage)
		app.Post("/api/admin/messages/:id/restore", s.RestoreMessage)
	})
	publicApp := fiber.New()
	publicApp.Get("/api/agencies/:slug/messages", s.GetAgencyMessages)

	hide := postJSON(t, adminApp, fmt.Sprintf("/api/admin/messages/%d/hide", msg.ID), map[string]any{"note": "solicitation"})
	defer func() { _ = hide.Body.Close() }()
	require.Equal(t, http.StatusOK, hide.StatusCode)

	// Hidden messages disappear from the public thread.
	public, err := publicApp.Test(httptest.NewRequest(http.MethodGet, "/api/agencies/message-board/messages", nil))
	require.NoError(t, err)
	defer func() { _ = public.Body.Close() }()
	require.Equal(t, http.StatusOK, public.StatusCode)
	var listing struct {
		Data []models.AgencyMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(public.Body).Decode(&listing))
	assert.Empty(t, listing.Data)

	// Hidden messages cannot be flagged.
	flag := postJSON(t, adminApp, fmt.Sprintf("/api/admin/messages/%d/flag", msg.ID), nil)
	defer func() { _ = flag.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, flag.StatusCode)

	restore := postJSON(t, adminApp, fmt.Sprintf("/api/admin/messages/%d/restore", msg.ID), nil)
	defer func() { _ = restore.Body.Close() }()
	require.Equal(t, http.StatusOK, restore.StatusCode)

	var restored models.AgencyMessage
	require.NoError(t, db.First(&restored, msg.ID).Error)
	assert.Equal(t, models.MessageStatusVisible, restored.Status)
	require.NotNil(t, restored.ModeratedByID)
	assert.Equal(t, admin.ID, *restored.ModeratedByID)
}

func csvUpload(t *testing.T, path, csv string) (*http.Request, error) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "agencies.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}

func TestImportHandlers(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	admin := models.User{Username: "importer", Email: "importer@example.com", Password: "pw", Role: models.UserRoleAdmin}
	mustCreate(t, db, &admin)

	app := testApp(admin.ID, func(app *fiber.App) {
		app.Post("/api/admin/agencies/import/validate", s.ValidateAgencyImport)
		app.Post("/api/admin/agencies/import", s.ImportAgencies)
	})

	csv := "name,slug,website,contact_email\n" +
		"Acme Staffing,acme-staffing,https://acme.example.com,hello@acme.example.com\n" +
		"Bad Row,BAD SLUG,,\n"

	validateReq, _ := csvUpload(t, "/api/admin/agencies/import/validate", csv)
	validateResp, err := app.Test(validateReq)
	require.NoError(t, err)
	defer func() { _ = validateResp.Body.Close() }()
	require.Equal(t, http.StatusOK, validateResp.StatusCode)

	var validatePayload struct {
		Data struct {
			Total   int `json:"total"`
			Valid   int `json:"valid"`
			Invalid int `json:"invalid"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(validateResp.Body).Decode(&validatePayload))
	assert.Equal(t, 2, validatePayload.Data.Total)
	assert.Equal(t, 1, validatePayload.Data.Valid)
	assert.Equal(t, 1, validatePayload.Data.Invalid)

	// Validation must not persist anything.
	var count int64
	require.NoError(t, db.Model(&models.Agency{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	importReq, _ := csvUpload(t, "/api/admin/agencies/import", csv)
	importResp, err := app.Test(importReq)
	require.NoError(t, err)
	defer func() { _ = importResp.Body.Close() }()
	require.Equal(t, http.StatusOK, importResp.StatusCode)

	var importPayload struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.NewDecoder(importResp.Body).Decode(&importPayload))
	assert.Equal(t, 1, importPayload.Imported)

	var agency models.Agency
	require.NoError(t, db.Where("slug = ?", "acme-staffing").First(&agency).Error)
	assert.Equal(t, "Acme Staffing", agency.Name)

	// A file with no valid rows is refused outright.
	badCSV := "name,slug\nOnly Bad,NOT A SLUG\n"
	badReq, _ := csvUpload(t, "/api/admin/agencies/import", badCSV)
	badResp, err := app.Test(badReq)
	require.NoError(t, err)
	defer func() { _ = badResp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func TestAdminRequiredBlocksNonAdmins(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	regular := models.User{Username: "pleb", Email: "pleb@example.com", Password: "pw"}
	mustCreate(t, db, &regular)

	app := testApp(regular.ID, func(app *fiber.App) {
		app.Get("/api/admin/claims", s.AdminRequired(), s.GetAdminClaims)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/claims", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
