package clicks

import (
	"encoding/json"
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"landkit/internal/landings"
	"landkit/internal/pkg/geoip"
)

// DefaultButtonText is stored when a click event carries no button label.
const DefaultButtonText = "Comprar"

// ProductClick is an append-only event recording a visitor's click on
// a product call-to-action within a landing. Rows are never updated or
// deleted by normal flow; click volume is always derived by
// aggregation, not denormalized onto the landing.
type ProductClick struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	LandingID       uint           `gorm:"index;index:idx_clicks_landing_product;not null" json:"landing_id"`
	ProductName     string         `gorm:"index;index:idx_clicks_landing_product;not null" json:"product_name"`
	ProductPrice    *float64       `json:"product_price"`
	ProductCategory *string        `gorm:"index" json:"product_category"`
	ProductSKU      *string        `json:"product_sku"`
	ButtonText      string         `gorm:"default:'Comprar'" json:"button_text"`
	SessionID       *string        `json:"session_id"`
	IPAddress       string         `gorm:"size:45" json:"ip_address"`
	UserAgent       string         `gorm:"type:text" json:"user_agent"`
	Referrer        string         `json:"referrer"`
	Country         string         `json:"country"`
	ProductData     datatypes.JSON `json:"product_data"`
	CreatedAt       time.Time      `gorm:"index;autoCreateTime" json:"created_at"`
}

// TrackClickInput defines the input required to record a product click.
type TrackClickInput struct {
	LandingSlug     string
	ProductName     string
	ProductPrice    *float64
	ProductCategory string
	ProductSKU      string
	ButtonText      string
	SessionID       string
	ProductData     map[string]any
	IPAddress       string
	UserAgent       string
	Referrer        string
}

// TrackClick resolves the landing by slug and stores one click row.
// Inactive landings are rejected the same way lead submission and view
// increments reject them. No landing counter changes here.
func TrackClick(db *gorm.DB, logger *slog.Logger, input *TrackClickInput) (*ProductClick, error) {
	landing, err := landings.GetLandingBySlug(db, input.LandingSlug)
	if err != nil {
		return nil, err
	}
	if !landing.IsActive {
		return nil, landings.ErrLandingInactive
	}

	var productData datatypes.JSON
	if input.ProductData != nil {
		data, err := json.Marshal(input.ProductData)
		if err != nil {
			return nil, fmt.Errorf("invalid product_data: %w", err)
		}
		productData = datatypes.JSON(data)
	}

	buttonText := input.ButtonText
	if buttonText == "" {
		buttonText = DefaultButtonText
	}

	click := ProductClick{
		LandingID:       landing.ID,
		ProductName:     input.ProductName,
		ProductPrice:    input.ProductPrice,
		ProductCategory: optional(input.ProductCategory),
		ProductSKU:      optional(input.ProductSKU),
		ButtonText:      buttonText,
		SessionID:       optional(input.SessionID),
		IPAddress:       input.IPAddress,
		UserAgent:       input.UserAgent,
		Referrer:        input.Referrer,
		Country:         geoip.CountryCode(input.IPAddress),
		ProductData:     productData,
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&click).Error
	})
	if err != nil {
		logger.Error("Failed to store product click",
			slog.String("slug", input.LandingSlug),
			slog.String("product", input.ProductName),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to store product click: %w", err)
	}

	return &click, nil
}

// optional maps "" to NULL so empty values stay out of DISTINCT and
// GROUP BY aggregates.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
