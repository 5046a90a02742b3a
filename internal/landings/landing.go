package landings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"landkit/internal/content"
	"landkit/internal/templates"
)

// LandingNotFoundError represents an error when a landing page is not found
type LandingNotFoundError struct {
	ID   uint
	Slug string
}

func (e *LandingNotFoundError) Error() string {
	if e.Slug != "" {
		return fmt.Sprintf("landing not found for slug: %s", e.Slug)
	}
	return fmt.Sprintf("landing not found: %d", e.ID)
}

// NewLandingNotFoundError creates a not-found error for an ID lookup.
func NewLandingNotFoundError(id uint) *LandingNotFoundError {
	return &LandingNotFoundError{ID: id}
}

// NewLandingNotFoundBySlugError creates a not-found error for a slug lookup.
func NewLandingNotFoundBySlugError(slug string) *LandingNotFoundError {
	return &LandingNotFoundError{Slug: slug}
}

// ErrLandingInactive is returned when a public operation targets a
// landing whose active flag is off.
var ErrLandingInactive = errors.New("landing is not active")

// ErrSlugTaken is returned when a requested slug is already in use.
var ErrSlugTaken = errors.New("slug is already in use")

// Landing is a published page instance built from a template.
// ViewsCount and LeadsCount are denormalized counters updated only
// through atomic SQL increments.
type Landing struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"index;not null" json:"user_id"`
	TemplateID   uint           `gorm:"index;not null" json:"template_id"`
	Title        string         `gorm:"not null" json:"title"`
	Slug         string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string         `json:"description"`
	Content      datatypes.JSON `gorm:"not null" json:"content"`
	CustomDomain string         `json:"custom_domain"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	ViewsCount   int            `gorm:"default:0" json:"views_count"`
	LeadsCount   int            `gorm:"default:0" json:"leads_count"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Filters narrows landing listings.
type Filters struct {
	OwnerID uint
	Active  *bool
	Search  string
}

// ListLandings returns the owner's landings matching the filters, newest first.
func ListLandings(db *gorm.DB, filters Filters) ([]Landing, error) {
	query := db.Model(&Landing{}).Where("user_id = ?", filters.OwnerID)

	if filters.Active != nil {
		query = query.Where("is_active = ?", *filters.Active)
	}
	if filters.Search != "" {
		query = query.Where("title LIKE ?", "%"+filters.Search+"%")
	}

	var landings []Landing
	if err := query.Order("created_at DESC").Find(&landings).Error; err != nil {
		return nil, fmt.Errorf("failed to list landings: %w", err)
	}
	return landings, nil
}

// OwnerLandingIDs returns the ids of every landing the owner has.
func OwnerLandingIDs(db *gorm.DB, ownerID uint) ([]uint, error) {
	var ids []uint
	if err := db.Model(&Landing{}).Where("user_id = ?", ownerID).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list owner landing ids: %w", err)
	}
	return ids, nil
}

// GetLandingByID retrieves a landing by its ID.
func GetLandingByID(db *gorm.DB, id uint) (*Landing, error) {
	var landing Landing
	if err := db.First(&landing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewLandingNotFoundError(id)
		}
		return nil, err
	}
	return &landing, nil
}

// GetLandingBySlug retrieves a landing by slug regardless of its
// active flag.
func GetLandingBySlug(db *gorm.DB, slug string) (*Landing, error) {
	var landing Landing
	if err := db.Where("slug = ?", slug).First(&landing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewLandingNotFoundBySlugError(slug)
		}
		return nil, err
	}
	return &landing, nil
}

// GetActiveLandingBySlug retrieves an active landing by slug. Inactive
// landings are reported as not found so their existence is not leaked.
func GetActiveLandingBySlug(db *gorm.DB, slug string) (*Landing, error) {
	var landing Landing
	if err := db.Where("slug = ? AND is_active = ?", slug, true).First(&landing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewLandingNotFoundBySlugError(slug)
		}
		return nil, err
	}
	return &landing, nil
}

// CreateLanding persists a new landing. The referenced template must be
// active, the slug (auto-generated from the title when empty) must be
// unique, and the content document always ends up with a usable form
// section.
func CreateLanding(db *gorm.DB, logger *slog.Logger, landing *Landing) error {
	if _, err := templates.GetActiveTemplateByID(db, landing.TemplateID); err != nil {
		return err
	}

	if landing.Slug == "" {
		landing.Slug = NewSlugFromTitle(landing.Title)
	}
	if err := EnsureSlugAvailable(db, landing.Slug, 0); err != nil {
		return err
	}

	doc, err := content.Parse(landing.Content)
	if err != nil {
		return fmt.Errorf("invalid landing content: %w", err)
	}
	if doc.EnsureForm() {
		data, err := doc.ToJSON()
		if err != nil {
			return err
		}
		landing.Content = data
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(landing).Error
	})
	if isSlugConflict(err) {
		// A concurrent create can win the slug between the
		// availability check and the insert.
		return ErrSlugTaken
	}
	return err
}

// isSlugConflict reports whether err is the unique-index violation on
// landings.slug.
func isSlugConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: landings.slug")
}

// UpdateLanding saves changes to an existing landing. Callers that
// change TemplateID or Slug are expected to have validated them via
// GetActiveTemplateByID and EnsureSlugAvailable.
func UpdateLanding(db *gorm.DB, logger *slog.Logger, landing *Landing) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Save(landing).Error
	})
}

// DeleteLanding removes a landing and all of its leads and clicks in a
// single transaction.
func DeleteLanding(db *gorm.DB, logger *slog.Logger, id uint) error {
	if _, err := GetLandingByID(db, id); err != nil {
		return err
	}

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM leads WHERE landing_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM product_clicks WHERE landing_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Landing{}, id).Error
	})
}

// IncrementViews bumps a landing's raw view counter by one. The
// increment happens in SQL so concurrent fetches never lose updates.
// Counts every fetch; this is not a unique-visitor metric.
func IncrementViews(db *gorm.DB, logger *slog.Logger, id uint) error {
	landing, err := GetLandingByID(db, id)
	if err != nil {
		return err
	}
	if !landing.IsActive {
		return ErrLandingInactive
	}

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Exec("UPDATE landings SET views_count = views_count + 1 WHERE id = ?", id).Error
	})
}

// DuplicateLanding clones a landing for the same owner: same content
// and template, " (Copy)" appended to the title, a fresh unique slug,
// and both counters reset to zero.
func DuplicateLanding(db *gorm.DB, logger *slog.Logger, src *Landing) (*Landing, error) {
	copy := Landing{
		UserID:      src.UserID,
		TemplateID:  src.TemplateID,
		Title:       src.Title + " (Copy)",
		Slug:        NewSlugFromTitle(src.Title),
		Description: src.Description,
		Content:     src.Content,
		IsActive:    src.IsActive,
		ViewsCount:  0,
		LeadsCount:  0,
	}

	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&copy).Error
	})
	if err != nil {
		return nil, err
	}
	return &copy, nil
}
