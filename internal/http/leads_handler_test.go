package http_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landkit/internal/landings"
	"landkit/internal/leads"
	"landkit/internal/testsupport"
)

func TestLeadsIndexAction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	owner := testsupport.CreateTestUser(t, db, "leads-owner@example.com", "password123")
	other := testsupport.CreateTestUser(t, db, "leads-other@example.com", "password123")
	token := testsupport.AuthHeader(t, owner.ID)
	tpl := testsupport.CreateTestTemplate(t, db, "Leads Index Template")

	mine := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "leads-index-mine")
	second := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "leads-index-second")
	foreign := testsupport.CreateTestLanding(t, db, other.ID, tpl.ID, "leads-index-foreign")

	testsupport.CreateTestLead(t, db, mine.ID, "Ana Torres", "ana@example.com")
	testsupport.CreateTestLead(t, db, mine.ID, "Bruno Vega", "bruno@example.com")
	testsupport.CreateTestLead(t, db, second.ID, "Carla Ruiz", "carla@example.com")
	testsupport.CreateTestLead(t, db, foreign.ID, "Not Mine", "hidden@example.com")

	t.Run("lists only the caller's leads", func(t *testing.T) {
		resp, body := request(t, app, "GET", "/api/v1/leads", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := body["data"].(map[string]any)
		assert.Equal(t, float64(3), data["total"])
		assert.Len(t, data["leads"], 3)
	})

	t.Run("filters by landing", func(t *testing.T) {
		resp, body := request(t, app, "GET", fmt.Sprintf("/api/v1/leads?landing_id=%d", second.ID), token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := body["data"].(map[string]any)
		assert.Equal(t, float64(1), data["total"])
	})

	t.Run("search matches name and email", func(t *testing.T) {
		resp, body := request(t, app, "GET", "/api/v1/leads?search=bruno", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := body["data"].(map[string]any)
		rows := data["leads"].([]any)
		require.Len(t, rows, 1)
		assert.Equal(t, "Bruno Vega", rows[0].(map[string]any)["name"])
	})

	t.Run("pagination keeps the full total", func(t *testing.T) {
		resp, body := request(t, app, "GET", "/api/v1/leads?limit=2&offset=0", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := body["data"].(map[string]any)
		assert.Equal(t, float64(3), data["total"])
		assert.Len(t, data["leads"], 2)
	})

	t.Run("malformed dates fail validation", func(t *testing.T) {
		resp, body := request(t, app, "GET", "/api/v1/leads?date_from=03/01/2025", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		errs := body["errors"].(map[string]any)
		assert.Contains(t, errs, "date")
	})
}

func TestLeadsShowAction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	owner := testsupport.CreateTestUser(t, db, "lead-show-owner@example.com", "password123")
	stranger := testsupport.CreateTestUser(t, db, "lead-show-stranger@example.com", "password123")
	token := testsupport.AuthHeader(t, owner.ID)
	tpl := testsupport.CreateTestTemplate(t, db, "Lead Show Template")
	landing := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "lead-show-page")
	lead := testsupport.CreateTestLead(t, db, landing.ID, "Diana", "diana@example.com")

	path := fmt.Sprintf("/api/v1/leads/%d", lead.ID)

	t.Run("owner can read a single lead", func(t *testing.T) {
		resp, body := request(t, app, "GET", path, token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := body["data"].(map[string]any)
		assert.Equal(t, "Diana", data["name"])
		assert.Equal(t, "diana@example.com", data["email"])
		assert.Equal(t, float64(landing.ID), data["landing_id"])
	})

	t.Run("foreign leads are hidden as not found", func(t *testing.T) {
		resp, _ := request(t, app, "GET", path, testsupport.AuthHeader(t, stranger.ID), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing lead is not found", func(t *testing.T) {
		resp, _ := request(t, app, "GET", "/api/v1/leads/99999", token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLeadsUpdateAction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	owner := testsupport.CreateTestUser(t, db, "lead-update-owner@example.com", "password123")
	stranger := testsupport.CreateTestUser(t, db, "lead-update-stranger@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Lead Update Template")
	landing := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "lead-update-page")
	lead := testsupport.CreateTestLead(t, db, landing.ID, "Original", "original@example.com")

	ownerToken := testsupport.AuthHeader(t, owner.ID)
	path := fmt.Sprintf("/api/v1/leads/%d", lead.ID)

	t.Run("owner can edit lead fields", func(t *testing.T) {
		resp, body := request(t, app, "PUT", path, ownerToken, map[string]any{
			"name":  "Corrected Name",
			"phone": "+34 600 000 000",
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]any)
		assert.Equal(t, "Corrected Name", data["name"])
		assert.Equal(t, "+34 600 000 000", data["phone"])
		assert.Equal(t, "original@example.com", data["email"])
	})

	t.Run("empty name fails validation", func(t *testing.T) {
		resp, body := request(t, app, "PUT", path, ownerToken, map[string]any{"name": "   "})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, body["errors"].(map[string]any), "name")
	})

	t.Run("invalid email fails validation", func(t *testing.T) {
		resp, body := request(t, app, "PUT", path, ownerToken, map[string]any{"email": "no-at-sign"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, body["errors"].(map[string]any), "email")
	})

	t.Run("foreign leads are hidden as not found", func(t *testing.T) {
		resp, _ := request(t, app, "PUT", path, testsupport.AuthHeader(t, stranger.ID), map[string]any{
			"name": "Hijack",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLeadsDeleteAction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	owner := testsupport.CreateTestUser(t, db, "lead-delete-owner@example.com", "password123")
	token := testsupport.AuthHeader(t, owner.ID)
	tpl := testsupport.CreateTestTemplate(t, db, "Lead Delete Template")
	landing := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "lead-delete-page")

	lead := testsupport.CreateTestLead(t, db, landing.ID, "Gone", "gone@example.com")
	testsupport.CreateTestLead(t, db, landing.ID, "Stays", "stays@example.com")
	require.NoError(t, db.Model(landing).Update("leads_count", 2).Error)

	resp, _ := request(t, app, "DELETE", fmt.Sprintf("/api/v1/leads/%d", lead.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&leads.Lead{}).Where("landing_id = ?", landing.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	fresh, err := landings.GetLandingByID(db, landing.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.LeadsCount)

	t.Run("double delete is not found", func(t *testing.T) {
		resp, _ := request(t, app, "DELETE", fmt.Sprintf("/api/v1/leads/%d", lead.ID), token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLeadsExportAction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	owner := testsupport.CreateTestUser(t, db, "lead-export-owner@example.com", "password123")
	token := testsupport.AuthHeader(t, owner.ID)
	tpl := testsupport.CreateTestTemplate(t, db, "Lead Export Template")
	landing := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "lead-export-page")
	testsupport.CreateTestLead(t, db, landing.ID, "Ana Torres", "ana@example.com")
	testsupport.CreateTestLead(t, db, landing.ID, "Bruno Vega", "bruno@example.com")

	req := httptest.NewRequest("GET", "/api/v1/leads/export", nil)
	req.Header.Set("Authorization", token)

	resp, err := app.Test(req, 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "email")
	assert.Contains(t, string(raw), "ana@example.com")
	assert.Contains(t, string(raw), "bruno@example.com")
}

func TestLeadsStatsAction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	owner := testsupport.CreateTestUser(t, db, "lead-stats-owner@example.com", "password123")
	token := testsupport.AuthHeader(t, owner.ID)
	tpl := testsupport.CreateTestTemplate(t, db, "Lead Stats Template")
	landing := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "lead-stats-page")

	testsupport.CreateTestLead(t, db, landing.ID, "Ana", "ana@example.com")
	testsupport.CreateTestLead(t, db, landing.ID, "Bruno", "bruno@example.com")

	resp, body := request(t, app, "GET", "/api/v1/leads/stats", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(2), data["today"])
	assert.NotEmpty(t, data["leads_by_day"])

	top := data["top_landing_pages"].([]any)
	require.NotEmpty(t, top)
	assert.Equal(t, "lead-stats-page", top[0].(map[string]any)["slug"])
}
