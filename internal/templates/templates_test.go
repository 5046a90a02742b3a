package templates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landkit/internal/landings"
	"landkit/internal/templates"
	"landkit/internal/testsupport"
)

func TestListTemplates(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	freeTpl := testsupport.CreateTestTemplate(t, db, "Starter Layout")
	premiumTpl := testsupport.CreateTestTemplate(t, db, "Premium Layout")
	require.NoError(t, db.Model(premiumTpl).Update("is_premium", true).Error)
	hidden := testsupport.CreateTestTemplate(t, db, "Retired Layout")
	require.NoError(t, db.Model(hidden).Update("is_active", false).Error)

	t.Run("no filters returns everything", func(t *testing.T) {
		result, err := templates.ListTemplates(db, templates.Filters{})
		require.NoError(t, err)
		assert.Len(t, result, 3)
	})

	t.Run("active filter", func(t *testing.T) {
		active := true
		result, err := templates.ListTemplates(db, templates.Filters{Active: &active})
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("premium filter", func(t *testing.T) {
		premium := true
		result, err := templates.ListTemplates(db, templates.Filters{Premium: &premium})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "Premium Layout", result[0].Name)
	})

	t.Run("name search", func(t *testing.T) {
		result, err := templates.ListTemplates(db, templates.Filters{Search: "Starter"})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, freeTpl.ID, result[0].ID)
	})

	t.Run("free and premium catalogs exclude inactive entries", func(t *testing.T) {
		free, err := templates.FreeTemplates(db)
		require.NoError(t, err)
		require.Len(t, free, 1)
		assert.Equal(t, "Starter Layout", free[0].Name)

		premium, err := templates.PremiumTemplates(db)
		require.NoError(t, err)
		require.Len(t, premium, 1)
		assert.Equal(t, "Premium Layout", premium[0].Name)
	})
}

func TestGetActiveTemplateByID(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	tpl := testsupport.CreateTestTemplate(t, db, "Active Check")

	found, err := templates.GetActiveTemplateByID(db, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, found.ID)

	t.Run("inactive template is rejected", func(t *testing.T) {
		require.NoError(t, db.Model(tpl).Update("is_active", false).Error)

		_, err := templates.GetActiveTemplateByID(db, tpl.ID)
		assert.ErrorIs(t, err, templates.ErrTemplateInactive)
	})

	t.Run("missing template is not found", func(t *testing.T) {
		_, err := templates.GetActiveTemplateByID(db, 99999)
		var notFound *templates.TemplateNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, uint(99999), notFound.ID)
	})
}

func TestDeleteTemplate(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUser(t, db, "tpl-deleter@example.com", "password123")

	tpl := testsupport.CreateTestTemplate(t, db, "Referenced Layout")
	landing := testsupport.CreateTestLanding(t, db, user.ID, tpl.ID, "tpl-dependent")

	t.Run("referenced template cannot be deleted", func(t *testing.T) {
		err := templates.DeleteTemplate(db, logger, tpl.ID)
		assert.ErrorIs(t, err, templates.ErrTemplateInUse)

		// The row is untouched.
		_, err = templates.GetTemplateByID(db, tpl.ID)
		assert.NoError(t, err)
	})

	t.Run("deletable once no landing references it", func(t *testing.T) {
		require.NoError(t, landings.DeleteLanding(db, logger, landing.ID))

		require.NoError(t, templates.DeleteTemplate(db, logger, tpl.ID))

		_, err := templates.GetTemplateByID(db, tpl.ID)
		var notFound *templates.TemplateNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("missing template is not found", func(t *testing.T) {
		err := templates.DeleteTemplate(db, logger, 99999)
		var notFound *templates.TemplateNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}
