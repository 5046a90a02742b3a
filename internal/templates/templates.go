package templates

import (
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TemplateNotFoundError represents an error when a template is not found
type TemplateNotFoundError struct {
	ID uint
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %d", e.ID)
}

// NewTemplateNotFoundError creates a new TemplateNotFoundError
func NewTemplateNotFoundError(id uint) *TemplateNotFoundError {
	return &TemplateNotFoundError{ID: id}
}

// ErrTemplateInUse is returned when deleting a template that landings
// still reference.
var ErrTemplateInUse = errors.New("template is referenced by landing pages")

// ErrTemplateInactive is returned when assigning an inactive template
// to a landing.
var ErrTemplateInactive = errors.New("template is not active")

// Template is a reusable content skeleton from which landings are created.
type Template struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `json:"description"`
	Content      datatypes.JSON `gorm:"not null" json:"content"`
	PreviewImage string         `json:"preview_image"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	IsPremium    bool           `gorm:"default:false" json:"is_premium"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Filters narrows template listings.
type Filters struct {
	Active  *bool
	Premium *bool
	Search  string
}

// ListTemplates returns templates matching the filters, newest first.
func ListTemplates(db *gorm.DB, filters Filters) ([]Template, error) {
	query := db.Model(&Template{})

	if filters.Active != nil {
		query = query.Where("is_active = ?", *filters.Active)
	}
	if filters.Premium != nil {
		query = query.Where("is_premium = ?", *filters.Premium)
	}
	if filters.Search != "" {
		query = query.Where("name LIKE ?", "%"+filters.Search+"%")
	}

	var templates []Template
	if err := query.Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// GetTemplateByID retrieves a template by its ID.
func GetTemplateByID(db *gorm.DB, id uint) (*Template, error) {
	var template Template
	if err := db.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewTemplateNotFoundError(id)
		}
		return nil, err
	}
	return &template, nil
}

// GetActiveTemplateByID retrieves a template and checks its active flag.
func GetActiveTemplateByID(db *gorm.DB, id uint) (*Template, error) {
	template, err := GetTemplateByID(db, id)
	if err != nil {
		return nil, err
	}
	if !template.IsActive {
		return nil, ErrTemplateInactive
	}
	return template, nil
}

// CreateTemplate persists a new template.
func CreateTemplate(db *gorm.DB, logger *slog.Logger, template *Template) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(template).Error
	})
}

// UpdateTemplate saves changes to an existing template.
func UpdateTemplate(db *gorm.DB, logger *slog.Logger, template *Template) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Save(template).Error
	})
}

// DeleteTemplate removes a template. Returns ErrTemplateInUse while
// any landing references it; the row is left untouched in that case.
func DeleteTemplate(db *gorm.DB, logger *slog.Logger, id uint) error {
	if _, err := GetTemplateByID(db, id); err != nil {
		return err
	}

	var referenced int64
	if err := db.Table("landings").Where("template_id = ?", id).Count(&referenced).Error; err != nil {
		return fmt.Errorf("failed to count landings for template %d: %w", id, err)
	}
	if referenced > 0 {
		return ErrTemplateInUse
	}

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Delete(&Template{}, id).Error
	})
}

// FreeTemplates returns active non-premium templates.
func FreeTemplates(db *gorm.DB) ([]Template, error) {
	var templates []Template
	if err := db.Where("is_active = ? AND is_premium = ?", true, false).
		Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list free templates: %w", err)
	}
	return templates, nil
}

// PremiumTemplates returns active premium templates.
func PremiumTemplates(db *gorm.DB) ([]Template, error) {
	var templates []Template
	if err := db.Where("is_active = ? AND is_premium = ?", true, true).
		Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list premium templates: %w", err)
	}
	return templates, nil
}
