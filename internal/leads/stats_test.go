package leads_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landkit/internal/leads"
	"landkit/internal/testsupport"
)

func TestGetStats(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	owner := testsupport.CreateTestUser(t, db, "stats-owner@example.com", "password123")
	other := testsupport.CreateTestUser(t, db, "stats-other@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Stats Template")

	busy := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "stats-busy")
	quiet := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "stats-quiet")
	foreign := testsupport.CreateTestLanding(t, db, other.ID, tpl.ID, "stats-foreign")

	// Three leads today on the busy landing, one today on the quiet
	// one, and one far in the past.
	for i := 0; i < 3; i++ {
		lead := testsupport.CreateTestLead(t, db, busy.ID, "Recent", "recent@example.com")
		require.NoError(t, db.Model(lead).Update("country", "ES").Error)
	}
	quietLead := testsupport.CreateTestLead(t, db, quiet.ID, "Quiet", "quiet@example.com")
	require.NoError(t, db.Model(quietLead).Update("country", "US").Error)

	old := testsupport.CreateTestLead(t, db, busy.ID, "Ancient", "ancient@example.com")
	require.NoError(t, db.Model(old).Updates(map[string]any{
		"country":    "ES",
		"created_at": time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC),
	}).Error)

	// Foreign owner traffic must never leak in.
	testsupport.CreateTestLead(t, db, foreign.ID, "Hidden", "hidden@example.com")

	stats, err := leads.GetStats(db, leads.StatsParams{OwnerID: owner.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(4), stats.Today)
	assert.GreaterOrEqual(t, stats.ThisWeek, int64(4))
	assert.GreaterOrEqual(t, stats.ThisMonth, int64(4))

	var daily int
	for _, day := range stats.LeadsByDay {
		daily += day.Count
	}
	assert.Equal(t, 4, daily, "the 2020 lead falls outside the 30-day series")

	require.NotEmpty(t, stats.TopLandings)
	assert.Equal(t, busy.ID, stats.TopLandings[0].LandingID)
	assert.Equal(t, int64(4), stats.TopLandings[0].Count)

	require.Len(t, stats.Countries, 2)
	assert.Equal(t, "ES", stats.Countries[0].Code)
	assert.Equal(t, "Spain", stats.Countries[0].Name)
	assert.Equal(t, int64(4), stats.Countries[0].Count)
	assert.Equal(t, "United States", stats.Countries[1].Name)

	t.Run("scoped to one landing", func(t *testing.T) {
		stats, err := leads.GetStats(db, leads.StatsParams{OwnerID: owner.ID, LandingID: quiet.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Total)
		assert.Equal(t, int64(1), stats.Today)
	})

	t.Run("empty account", func(t *testing.T) {
		empty := testsupport.CreateTestUser(t, db, "stats-empty@example.com", "password123")

		stats, err := leads.GetStats(db, leads.StatsParams{OwnerID: empty.ID})
		require.NoError(t, err)
		assert.Zero(t, stats.Total)
		assert.Empty(t, stats.LeadsByDay)
		assert.Empty(t, stats.TopLandings)
		assert.Empty(t, stats.Countries)
	})
}
