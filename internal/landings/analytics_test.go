package landings_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landkit/internal/landings"
	"landkit/internal/testsupport"
)

func TestConversionRate(t *testing.T) {
	tests := []struct {
		name     string
		leads    int
		views    int
		expected float64
	}{
		{
			name:     "Typical rate",
			leads:    5,
			views:    100,
			expected: 5,
		},
		{
			name:     "Rounded to two decimals",
			leads:    1,
			views:    3,
			expected: 33.33,
		},
		{
			name:     "Zero views is zero rate",
			leads:    10,
			views:    0,
			expected: 0,
		},
		{
			name:     "Zero leads",
			leads:    0,
			views:    50,
			expected: 0,
		},
		{
			name:     "Rate above one hundred",
			leads:    3,
			views:    2,
			expected: 150,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, landings.ConversionRate(tt.leads, tt.views))
		})
	}
}

func TestGetAnalytics(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUser(t, db, "analytics@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Analytics Template")
	landing := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "analytics-page")

	require.NoError(t, db.Model(landing).Updates(map[string]any{
		"views_count": 200,
		"leads_count": 7,
	}).Error)

	for i := 0; i < 7; i++ {
		lead := testsupport.CreateTestLead(t, db, landing.ID, "Visitor", "visitor@example.com")
		// Spread creation times so recency ordering is deterministic.
		stamp := time.Now().UTC().Add(-time.Duration(i) * time.Hour)
		require.NoError(t, db.Model(lead).Update("created_at", stamp).Error)
	}

	analytics, err := landings.GetAnalytics(db, landing.ID)
	require.NoError(t, err)

	assert.Equal(t, 200, analytics.TotalViews)
	assert.Equal(t, 7, analytics.TotalLeads)
	assert.Equal(t, 3.5, analytics.ConversionRate)
	assert.Len(t, analytics.RecentLeads, 5, "recent leads are capped at five")
	assert.NotEmpty(t, analytics.LeadsByDay)

	var total int
	for _, day := range analytics.LeadsByDay {
		total += day.Count
	}
	assert.Equal(t, 7, total)

	t.Run("missing landing is not found", func(t *testing.T) {
		_, err := landings.GetAnalytics(db, 99999)
		var notFound *landings.LandingNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("landing without traffic has zeroed stats", func(t *testing.T) {
		empty := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "empty-analytics-page")

		analytics, err := landings.GetAnalytics(db, empty.ID)
		require.NoError(t, err)
		assert.Zero(t, analytics.TotalViews)
		assert.Zero(t, analytics.TotalLeads)
		assert.Zero(t, analytics.ConversionRate)
		assert.Empty(t, analytics.RecentLeads)
		assert.Empty(t, analytics.LeadsByDay)
	})
}
