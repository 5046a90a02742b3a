package landings

import (
	"fmt"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"landkit/internal/content"
)

// BackfillDefaultForms installs the default contact form on every
// landing whose content has no form section with at least one field.
// It runs at startup after migrations and from the CLI; rerunning it
// changes nothing once all landings carry a form. Returns the number
// of landings updated.
func BackfillDefaultForms(db *gorm.DB, logger *slog.Logger) (int, error) {
	var landings []Landing
	if err := db.Find(&landings).Error; err != nil {
		return 0, fmt.Errorf("failed to load landings for form backfill: %w", err)
	}

	updated := 0
	for i := range landings {
		landing := &landings[i]

		doc, err := content.Parse(landing.Content)
		if err != nil {
			logger.Warn("Skipping landing with unparsable content",
				slog.Uint64("landing_id", uint64(landing.ID)),
				slog.Any("error", err))
			continue
		}

		if !doc.EnsureForm() {
			continue
		}

		data, err := doc.ToJSON()
		if err != nil {
			return updated, err
		}

		err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
			return tx.Model(&Landing{}).Where("id = ?", landing.ID).
				Update("content", data).Error
		})
		if err != nil {
			return updated, fmt.Errorf("failed to backfill form for landing %d: %w", landing.ID, err)
		}

		logger.Info("Installed default contact form",
			slog.Uint64("landing_id", uint64(landing.ID)),
			slog.String("slug", landing.Slug))
		updated++
	}

	return updated, nil
}
