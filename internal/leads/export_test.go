package leads_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landkit/internal/leads"
	"landkit/internal/testsupport"
)

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 45, 0, time.UTC)
	assert.Equal(t, "leads_2025-03-15_14-30-45.csv", leads.ExportFilename(now))
}

func TestExportCSV(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	owner := testsupport.CreateTestUser(t, db, "export-owner@example.com", "password123")
	other := testsupport.CreateTestUser(t, db, "export-other@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Export Template")

	landing := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "export-page")
	foreign := testsupport.CreateTestLanding(t, db, other.ID, tpl.ID, "export-foreign")

	lead := testsupport.CreateTestLead(t, db, landing.ID, "Ana, Torres", "ana@example.com")
	require.NoError(t, db.Model(lead).Update("country", "ES").Error)
	testsupport.CreateTestLead(t, db, landing.ID, "Bruno", "bruno@example.com")
	testsupport.CreateTestLead(t, db, foreign.ID, "Hidden", "hidden@example.com")

	var buf bytes.Buffer
	err := leads.ExportCSV(db, leads.LeadFilters{OwnerID: owner.ID}, &buf)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus the owner's two leads")

	assert.Equal(t, []string{"id", "landing_id", "name", "email", "phone", "message", "country", "created_at"}, records[0])

	names := []string{records[1][2], records[2][2]}
	assert.Contains(t, names, "Ana, Torres", "commas in values survive CSV quoting")
	assert.Contains(t, names, "Bruno")
	assert.NotContains(t, names, "Hidden")

	t.Run("pagination filters are ignored", func(t *testing.T) {
		var buf bytes.Buffer
		err := leads.ExportCSV(db, leads.LeadFilters{OwnerID: owner.ID, Limit: 1, Offset: 5}, &buf)
		require.NoError(t, err)

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, 3, "an export always covers the full match set")
	})

	t.Run("empty result still writes the header", func(t *testing.T) {
		empty := testsupport.CreateTestUser(t, db, "export-empty@example.com", "password123")

		var buf bytes.Buffer
		err := leads.ExportCSV(db, leads.LeadFilters{OwnerID: empty.ID}, &buf)
		require.NoError(t, err)

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "id", records[0][0])
	})
}
