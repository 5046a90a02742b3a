package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"
)

// ExportFilename builds the attachment filename for a CSV export.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("leads_%s.csv", now.Format("2006-01-02_15-04-05"))
}

// ExportCSV writes the owner's filtered leads as CSV. Pagination
// filters are ignored; an export always covers the full match set.
func ExportCSV(db *gorm.DB, filters LeadFilters, w io.Writer) error {
	filters.Limit = 0
	filters.Offset = 0

	result, err := GetFilteredLeads(db, filters)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{"id", "landing_id", "name", "email", "phone", "message", "country", "created_at"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, lead := range result.Leads {
		row := []string{
			fmt.Sprintf("%d", lead.ID),
			fmt.Sprintf("%d", lead.LandingID),
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.Message,
			lead.Country,
			lead.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
