package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"landkit/internal/landings"
	"landkit/internal/pkg/geoip"
)

// LeadNotFoundError represents an error when a lead is not found
type LeadNotFoundError struct {
	ID uint
}

func (e *LeadNotFoundError) Error() string {
	return fmt.Sprintf("lead not found: %d", e.ID)
}

// NewLeadNotFoundError creates a new LeadNotFoundError
func NewLeadNotFoundError(id uint) *LeadNotFoundError {
	return &LeadNotFoundError{ID: id}
}

// Lead is a contact-form submission captured against a landing.
type Lead struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	LandingID uint           `gorm:"index:idx_leads_landing_created;not null" json:"landing_id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null" json:"email"`
	Phone     string         `json:"phone"`
	Message   string         `gorm:"type:text" json:"message"`
	ExtraData datatypes.JSON `json:"extra_data"`
	IPAddress string         `json:"ip_address"`
	UserAgent string         `json:"user_agent"`
	Country   string         `json:"country"`
	CreatedAt time.Time      `gorm:"index:idx_leads_landing_created;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// CaptureLeadInput defines the input required to capture a lead.
type CaptureLeadInput struct {
	LandingID uint
	Name      string
	Email     string
	Phone     string
	Message   string
	ExtraData map[string]any
	IPAddress string
	UserAgent string
}

// CaptureLead persists a submission against an active landing. The lead
// insert and the leads_count increment run in one transaction, the
// increment as plain SQL so concurrent submissions never lose updates.
func CaptureLead(db *gorm.DB, logger *slog.Logger, input *CaptureLeadInput) (*Lead, error) {
	landing, err := landings.GetLandingByID(db, input.LandingID)
	if err != nil {
		return nil, err
	}
	if !landing.IsActive {
		return nil, landings.ErrLandingInactive
	}

	var extraData datatypes.JSON
	if input.ExtraData != nil {
		data, err := json.Marshal(input.ExtraData)
		if err != nil {
			return nil, fmt.Errorf("invalid extra_data: %w", err)
		}
		extraData = datatypes.JSON(data)
	}

	lead := Lead{
		LandingID: input.LandingID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Message:   input.Message,
		ExtraData: extraData,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Country:   geoip.CountryCode(input.IPAddress),
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Create(&lead).Error; err != nil {
			return err
		}
		return tx.Exec("UPDATE landings SET leads_count = leads_count + 1 WHERE id = ?",
			input.LandingID).Error
	})
	if err != nil {
		logger.Error("Failed to capture lead",
			slog.Uint64("landing_id", uint64(input.LandingID)),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to capture lead: %w", err)
	}

	return &lead, nil
}

// GetLeadByID retrieves a lead by its ID.
func GetLeadByID(db *gorm.DB, id uint) (*Lead, error) {
	var lead Lead
	if err := db.First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewLeadNotFoundError(id)
		}
		return nil, err
	}
	return &lead, nil
}

// GetOwnedLeadByID retrieves a lead and verifies the caller owns its
// parent landing.
func GetOwnedLeadByID(db *gorm.DB, id, ownerID uint) (*Lead, error) {
	lead, err := GetLeadByID(db, id)
	if err != nil {
		return nil, err
	}

	landing, err := landings.GetLandingByID(db, lead.LandingID)
	if err != nil {
		return nil, err
	}
	if landing.UserID != ownerID {
		return nil, NewLeadNotFoundError(id)
	}
	return lead, nil
}

// UpdateLead saves owner edits to a captured lead.
func UpdateLead(db *gorm.DB, logger *slog.Logger, lead *Lead) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Save(lead).Error
	})
}

// DeleteLead removes a lead and decrements the parent landing's
// leads_count by exactly one in the same transaction. The counter
// never goes below zero.
func DeleteLead(db *gorm.DB, logger *slog.Logger, id uint) error {
	lead, err := GetLeadByID(db, id)
	if err != nil {
		return err
	}

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Delete(&Lead{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return NewLeadNotFoundError(id)
		}
		return tx.Exec(`
			UPDATE landings
			SET leads_count = CASE WHEN leads_count > 0 THEN leads_count - 1 ELSE 0 END
			WHERE id = ?
		`, lead.LandingID).Error
	})
}
