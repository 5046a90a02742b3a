package landings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"landkit/internal/clicks"
	"landkit/internal/content"
	"landkit/internal/landings"
	"landkit/internal/leads"
	"landkit/internal/templates"
	"landkit/internal/testsupport"
)

func TestCreateLanding(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUser(t, db, "creator@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Create Template")

	t.Run("creates a landing and installs the default form", func(t *testing.T) {
		landing := &landings.Landing{
			UserID:     user.ID,
			TemplateID: tpl.ID,
			Title:      "Spring Campaign",
			Content:    testsupport.ContentJSON(t, map[string]any{"hero": map[string]any{"title": "Spring"}}),
		}

		err := landings.CreateLanding(db, logger, landing)
		require.NoError(t, err)
		require.NotZero(t, landing.ID)
		assert.Contains(t, landing.Slug, "spring-campaign-")

		doc, err := content.Parse(landing.Content)
		require.NoError(t, err)
		assert.True(t, doc.HasForm(), "created landing should always carry a usable form")
	})

	t.Run("keeps a custom form untouched", func(t *testing.T) {
		landing := &landings.Landing{
			UserID:     user.ID,
			TemplateID: tpl.ID,
			Title:      "Custom Form Campaign",
			Content: testsupport.ContentJSON(t, map[string]any{
				"form": map[string]any{
					"title":  "Talk to sales",
					"fields": []map[string]any{{"name": "email", "type": "email", "required": true}},
				},
			}),
		}

		require.NoError(t, landings.CreateLanding(db, logger, landing))

		doc, err := content.Parse(landing.Content)
		require.NoError(t, err)
		assert.Equal(t, "Talk to sales", doc.Form.Title)
		assert.Len(t, doc.Form.Fields, 1)
	})

	t.Run("rejects an inactive template", func(t *testing.T) {
		inactive := testsupport.CreateTestTemplate(t, db, "Inactive Template")
		require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

		landing := &landings.Landing{
			UserID:     user.ID,
			TemplateID: inactive.ID,
			Title:      "Doomed",
			Content:    testsupport.ContentJSON(t, map[string]any{"hero": map[string]any{"title": "x"}}),
		}

		err := landings.CreateLanding(db, logger, landing)
		assert.ErrorIs(t, err, templates.ErrTemplateInactive)
	})

	t.Run("rejects a missing template", func(t *testing.T) {
		landing := &landings.Landing{
			UserID:     user.ID,
			TemplateID: 99999,
			Title:      "No Template",
			Content:    testsupport.ContentJSON(t, map[string]any{"hero": map[string]any{"title": "x"}}),
		}

		err := landings.CreateLanding(db, logger, landing)
		var notFound *templates.TemplateNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("rejects a taken slug", func(t *testing.T) {
		testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "reserved-slug")

		landing := &landings.Landing{
			UserID:     user.ID,
			TemplateID: tpl.ID,
			Title:      "Another",
			Slug:       "reserved-slug",
			Content:    testsupport.ContentJSON(t, map[string]any{"hero": map[string]any{"title": "x"}}),
		}

		err := landings.CreateLanding(db, logger, landing)
		assert.ErrorIs(t, err, landings.ErrSlugTaken)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		landing := &landings.Landing{
			UserID:     user.ID,
			TemplateID: tpl.ID,
			Title:      "Empty Content",
		}

		err := landings.CreateLanding(db, logger, landing)
		assert.Error(t, err)
	})
}

func TestGetActiveLandingBySlug(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	user := testsupport.CreateTestUser(t, db, "resolver@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Resolver Template")

	active := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "active-page")
	inactive := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "inactive-page")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	t.Run("resolves an active landing", func(t *testing.T) {
		found, err := landings.GetActiveLandingBySlug(db, "active-page")
		require.NoError(t, err)
		assert.Equal(t, active.ID, found.ID)
	})

	t.Run("hides inactive landings behind not found", func(t *testing.T) {
		_, err := landings.GetActiveLandingBySlug(db, "inactive-page")
		var notFound *landings.LandingNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "inactive-page", notFound.Slug)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		_, err := landings.GetActiveLandingBySlug(db, "never-created")
		var notFound *landings.LandingNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestIncrementViews(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUser(t, db, "viewer@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Views Template")

	t.Run("each call adds exactly one view", func(t *testing.T) {
		landing := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "counted-page")

		for i := 0; i < 5; i++ {
			require.NoError(t, landings.IncrementViews(db, logger, landing.ID))
		}

		fresh, err := landings.GetLandingByID(db, landing.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, fresh.ViewsCount)
		assert.Equal(t, 0, fresh.LeadsCount, "view increments never touch the leads counter")
	})

	t.Run("rejects inactive landings", func(t *testing.T) {
		landing := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "paused-page")
		require.NoError(t, db.Model(landing).Update("is_active", false).Error)

		err := landings.IncrementViews(db, logger, landing.ID)
		assert.ErrorIs(t, err, landings.ErrLandingInactive)

		fresh, err := landings.GetLandingByID(db, landing.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, fresh.ViewsCount)
	})

	t.Run("missing landing is not found", func(t *testing.T) {
		err := landings.IncrementViews(db, logger, 99999)
		var notFound *landings.LandingNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestDuplicateLanding(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUser(t, db, "cloner@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Clone Template")

	src := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "original-page")
	require.NoError(t, db.Model(src).Updates(map[string]any{
		"views_count": 120,
		"leads_count": 14,
	}).Error)
	src, err := landings.GetLandingByID(db, src.ID)
	require.NoError(t, err)

	copy, err := landings.DuplicateLanding(db, logger, src)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, copy.ID)
	assert.Equal(t, src.Title+" (Copy)", copy.Title)
	assert.NotEqual(t, src.Slug, copy.Slug)
	assert.Equal(t, src.UserID, copy.UserID)
	assert.Equal(t, src.TemplateID, copy.TemplateID)
	assert.Equal(t, string(src.Content), string(copy.Content))
	assert.Equal(t, 0, copy.ViewsCount)
	assert.Equal(t, 0, copy.LeadsCount)

	// The source is untouched.
	fresh, err := landings.GetLandingByID(db, src.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, fresh.ViewsCount)
	assert.Equal(t, 14, fresh.LeadsCount)
}

func TestDeleteLanding(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUser(t, db, "deleter@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Delete Template")

	landing := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "doomed-page")
	keeper := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "kept-page")

	testsupport.CreateTestLead(t, db, landing.ID, "Ana", "ana@example.com")
	testsupport.CreateTestLead(t, db, landing.ID, "Bruno", "bruno@example.com")
	testsupport.CreateTestClick(t, db, landing.ID, "Widget", testsupport.ClickOptions{})
	testsupport.CreateTestLead(t, db, keeper.ID, "Carla", "carla@example.com")

	require.NoError(t, landings.DeleteLanding(db, logger, landing.ID))

	_, err := landings.GetLandingByID(db, landing.ID)
	var notFound *landings.LandingNotFoundError
	assert.ErrorAs(t, err, &notFound)

	var leadCount, clickCount int64
	require.NoError(t, db.Model(&leads.Lead{}).Where("landing_id = ?", landing.ID).Count(&leadCount).Error)
	require.NoError(t, db.Model(&clicks.ProductClick{}).Where("landing_id = ?", landing.ID).Count(&clickCount).Error)
	assert.Zero(t, leadCount)
	assert.Zero(t, clickCount)

	// The other landing's data survives.
	require.NoError(t, db.Model(&leads.Lead{}).Where("landing_id = ?", keeper.ID).Count(&leadCount).Error)
	assert.Equal(t, int64(1), leadCount)

	t.Run("deleting twice is not found", func(t *testing.T) {
		err := landings.DeleteLanding(db, logger, landing.ID)
		var notFound *landings.LandingNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestBackfillDefaultForms(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUser(t, db, "backfill@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "Backfill Template")

	// One landing with a form, one without, one with unparsable content.
	withForm := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "has-form")

	noForm := landings.Landing{
		UserID:     user.ID,
		TemplateID: tpl.ID,
		Title:      "No Form",
		Slug:       "no-form",
		Content:    testsupport.ContentJSON(t, map[string]any{"hero": map[string]any{"title": "Bare"}}),
		IsActive:   true,
	}
	require.NoError(t, db.Create(&noForm).Error)

	broken := landings.Landing{
		UserID:     user.ID,
		TemplateID: tpl.ID,
		Title:      "Broken",
		Slug:       "broken-content",
		Content:    datatypes.JSON(`"just a string"`),
		IsActive:   true,
	}
	require.NoError(t, db.Create(&broken).Error)

	updated, err := landings.BackfillDefaultForms(db, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, updated, "only the form-less landing should change")

	fresh, err := landings.GetLandingByID(db, noForm.ID)
	require.NoError(t, err)
	doc, err := content.Parse(fresh.Content)
	require.NoError(t, err)
	assert.True(t, doc.HasForm())

	untouched, err := landings.GetLandingByID(db, withForm.ID)
	require.NoError(t, err)
	assert.Equal(t, string(withForm.Content), string(untouched.Content))

	t.Run("rerun changes nothing", func(t *testing.T) {
		updated, err := landings.BackfillDefaultForms(db, logger)
		require.NoError(t, err)
		assert.Zero(t, updated)
	})
}

func TestListLandings(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	owner := testsupport.CreateTestUser(t, db, "lister@example.com", "password123")
	other := testsupport.CreateTestUser(t, db, "other-lister@example.com", "password123")
	tpl := testsupport.CreateTestTemplate(t, db, "List Template")

	testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "list-one")
	paused := testsupport.CreateTestLanding(t, db, owner.ID, tpl.ID, "list-two")
	require.NoError(t, db.Model(paused).Update("is_active", false).Error)
	testsupport.CreateTestLanding(t, db, other.ID, tpl.ID, "foreign-page")

	t.Run("scopes to the owner", func(t *testing.T) {
		result, err := landings.ListLandings(db, landings.Filters{OwnerID: owner.ID})
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("filters by active flag", func(t *testing.T) {
		active := true
		result, err := landings.ListLandings(db, landings.Filters{OwnerID: owner.ID, Active: &active})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "list-one", result[0].Slug)
	})

	t.Run("filters by title search", func(t *testing.T) {
		result, err := landings.ListLandings(db, landings.Filters{OwnerID: owner.ID, Search: "list-two"})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "list-two", result[0].Slug)
	})
}
