package landings

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slugify converts a title into a URL-safe slug: lowercase ASCII
// letters and digits separated by single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "landing"
	}
	return slug
}

// NewSlugFromTitle builds a slug from a title with a short random
// suffix so collisions between similar titles are unlikely.
func NewSlugFromTitle(title string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return Slugify(title) + "-" + suffix
}

// IsSlugAvailable reports whether no landing currently uses the slug.
func IsSlugAvailable(db *gorm.DB, slug string) (bool, error) {
	var count int64
	if err := db.Model(&Landing{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug availability: %w", err)
	}
	return count == 0, nil
}

// EnsureSlugAvailable returns ErrSlugTaken when another landing
// (excluding excludeID) already uses the slug.
func EnsureSlugAvailable(db *gorm.DB, slug string, excludeID uint) error {
	query := db.Model(&Landing{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id != ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check slug availability: %w", err)
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}

// GenerateUniqueSlug derives a slug from the title and appends an
// incrementing numeric suffix until it is free.
func GenerateUniqueSlug(db *gorm.DB, title string) (string, error) {
	base := Slugify(title)
	slug := base

	for counter := 2; ; counter++ {
		available, err := IsSlugAvailable(db, slug)
		if err != nil {
			return "", err
		}
		if available {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
