package seeder

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"landkit/internal/clicks"
	"landkit/internal/content"
	"landkit/internal/landings"
	"landkit/internal/leads"
	"landkit/internal/templates"
	"landkit/internal/users"
)

// Seeder fills the database with an admin user, the starter template
// catalog, and demo landings with leads and product clicks spread over
// the trailing 30 days. Re-running it is safe: existing records are
// detected by email, template name, and landing slug.
type Seeder struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
	LeadCount int
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, leadCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
		LeadCount: leadCount,
	}
}

// Run executes the seeding process
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	s.Logger.Info("Starting database seeding...", slog.Int("leadCount", s.LeadCount))

	user, err := s.seedUser()
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	catalog, err := s.seedTemplates()
	if err != nil {
		return fmt.Errorf("failed to seed templates: %w", err)
	}

	demoLandings, err := s.seedLandings(user.ID, catalog)
	if err != nil {
		return fmt.Errorf("failed to seed landings: %w", err)
	}

	for _, landing := range demoLandings {
		if err := s.generateTraffic(ctx, landing); err != nil {
			return fmt.Errorf("failed to generate traffic for %s: %w", landing.Slug, err)
		}
	}

	s.Logger.Info("Seeding completed successfully", slog.Duration("elapsed", time.Since(start)))
	return nil
}

// seedUser ensures the default admin user exists
func (s *Seeder) seedUser() (*users.User, error) {
	db := s.DBManager.GetConnection()
	user, err := users.FindByEmail(db, "admin@example.com")

	if err == nil {
		s.Logger.Info("Admin user already exists", slog.String("email", user.Email))
		return user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	s.Logger.Info("Creating admin user")
	newUser, err := users.CreateUser(db, s.Logger, "Admin", "admin@example.com", "password")
	if err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	s.Logger.Info("Admin user created successfully", slog.Uint64("id", uint64(newUser.ID)))
	return newUser, nil
}

// seedTemplates creates the starter template catalog
func (s *Seeder) seedTemplates() ([]*templates.Template, error) {
	db := s.DBManager.GetConnection()

	var catalog []*templates.Template
	for _, def := range starterTemplates() {
		var existing templates.Template
		if err := db.Where("name = ?", def.Name).First(&existing).Error; err == nil {
			s.Logger.Info("Template already exists", slog.String("name", existing.Name))
			catalog = append(catalog, &existing)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check for template %s: %w", def.Name, err)
		}

		tpl := def
		if err := templates.CreateTemplate(db, s.Logger, &tpl); err != nil {
			return nil, fmt.Errorf("failed to create template %s: %w", tpl.Name, err)
		}
		s.Logger.Info("Template created successfully",
			slog.Uint64("id", uint64(tpl.ID)), slog.String("name", tpl.Name))
		catalog = append(catalog, &tpl)
	}

	return catalog, nil
}

// seedLandings creates one demo landing per starter template
func (s *Seeder) seedLandings(userID uint, catalog []*templates.Template) ([]*landings.Landing, error) {
	db := s.DBManager.GetConnection()

	demos := []struct {
		title string
		slug  string
	}{
		{"Artisan Coffee Subscription", "artisan-coffee-demo"},
		{"Yoga Studio Launch", "yoga-studio-demo"},
		{"Handmade Leather Goods", "leather-goods-demo"},
	}

	var result []*landings.Landing
	for i, demo := range demos {
		if i >= len(catalog) {
			break
		}

		existing, err := landings.GetLandingBySlug(db, demo.slug)
		if err == nil {
			s.Logger.Info("Landing already exists", slog.String("slug", existing.Slug))
			result = append(result, existing)
			continue
		}
		var notFound *landings.LandingNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to check for landing %s: %w", demo.slug, err)
		}

		landing := landings.Landing{
			UserID:     userID,
			TemplateID: catalog[i].ID,
			Title:      demo.title,
			Slug:       demo.slug,
			Content:    catalog[i].Content,
			IsActive:   true,
		}
		if err := landings.CreateLanding(db, s.Logger, &landing); err != nil {
			return nil, fmt.Errorf("failed to create landing %s: %w", demo.slug, err)
		}

		s.Logger.Info("Landing created successfully",
			slog.Uint64("id", uint64(landing.ID)), slog.String("slug", landing.Slug))
		result = append(result, &landing)
	}

	return result, nil
}

// generateTraffic simulates visitor activity for a landing: page
// views, product clicks grouped into sessions, and captured leads.
func (s *Seeder) generateTraffic(ctx context.Context, landing *landings.Landing) error {
	db := s.DBManager.GetConnection()
	ipPool := generateIPPool(50)
	userAgents := getUserAgents()
	referrers := getReferrers()

	leadTarget := s.LeadCount
	if leadTarget <= 0 {
		leadTarget = 25
	}

	products := demoProducts()
	clicksCreated := 0
	leadsCreated := 0

	for i := 0; i < leadTarget; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ip := ipPool[rand.IntN(len(ipPool))]
		ua := userAgents[rand.IntN(len(userAgents))]
		sessionID := fmt.Sprintf("seed-%d-%d", landing.ID, i)

		// Most sessions browse a few products before anything else.
		numClicks := rand.IntN(3) + 1
		for c := 0; c < numClicks; c++ {
			product := products[rand.IntN(len(products))]
			price := product.price
			input := &clicks.TrackClickInput{
				LandingSlug:     landing.Slug,
				ProductName:     product.name,
				ProductPrice:    &price,
				ProductCategory: product.category,
				SessionID:       sessionID,
				IPAddress:       ip,
				UserAgent:       ua,
				Referrer:        referrers[rand.IntN(len(referrers))],
			}
			if _, err := clicks.TrackClick(db, s.Logger, input); err != nil {
				s.Logger.Error("Failed to record demo click", slog.Any("error", err))
			} else {
				clicksCreated++
			}
		}

		if err := landings.IncrementViews(db, s.Logger, landing.ID); err != nil {
			s.Logger.Error("Failed to record demo view", slog.Any("error", err))
		}

		// Roughly a third of sessions convert into a lead.
		if rand.IntN(3) != 0 {
			continue
		}

		input := &leads.CaptureLeadInput{
			LandingID: landing.ID,
			Name:      fmt.Sprintf("Demo Visitor %d", i+1),
			Email:     fmt.Sprintf("visitor%d@example.com", i+1),
			Phone:     fmt.Sprintf("+34 600 %03d %03d", rand.IntN(1000), rand.IntN(1000)),
			Message:   "Interested in your products, please reach out.",
			IPAddress: ip,
			UserAgent: ua,
		}
		if _, err := leads.CaptureLead(db, s.Logger, input); err != nil {
			s.Logger.Error("Failed to record demo lead", slog.Any("error", err))
		} else {
			leadsCreated++
		}
	}

	// Spread the rows over the last 30 days so the daily charts have
	// shape. Timestamps are adjusted after insert because the capture
	// paths always stamp now.
	if err := backdateRows(db, landing.ID); err != nil {
		s.Logger.Warn("Failed to backdate demo rows", slog.Any("error", err))
	}

	s.Logger.Info("Generated demo traffic",
		slog.String("slug", landing.Slug),
		slog.Int("clicks", clicksCreated),
		slog.Int("leads", leadsCreated))
	return nil
}

func backdateRows(db *gorm.DB, landingID uint) error {
	query := `
		UPDATE %s
		SET created_at = datetime(created_at, '-' || (ABS(RANDOM()) %% 30) || ' days')
		WHERE landing_id = ?
	`
	for _, table := range []string{"leads", "product_clicks"} {
		if err := db.Exec(fmt.Sprintf(query, table), landingID).Error; err != nil {
			return err
		}
	}
	return nil
}

type demoProduct struct {
	name     string
	price    float64
	category string
}

func demoProducts() []demoProduct {
	return []demoProduct{
		{"Espresso Blend 250g", 12.50, "coffee"},
		{"Single Origin Ethiopia", 16.90, "coffee"},
		{"Monthly Subscription", 29.99, "subscription"},
		{"Starter Yoga Mat", 39.00, "gear"},
		{"Leather Wallet", 55.00, "accessories"},
		{"Leather Belt", 45.00, "accessories"},
	}
}

func tierPrice(v float64) *float64 {
	return &v
}

// starterTemplates returns the built-in template catalog.
func starterTemplates() []templates.Template {
	defs := []struct {
		name        string
		description string
		premium     bool
		doc         content.Document
	}{
		{
			name:        "Product Launch",
			description: "Hero, feature grid and contact form for launching a single product.",
			doc: content.Document{
				Hero: &content.Hero{
					Title:    "Launch something people want",
					Subtitle: "Tell the story of your product in one page",
					CTAText:  "Comprar",
				},
				Features: []content.Feature{
					{Title: "Fast setup", Description: "Publish in minutes, no code needed"},
					{Title: "Lead capture", Description: "Every visitor can leave their contact"},
					{Title: "Click analytics", Description: "See which products get attention"},
				},
			},
		},
		{
			name:        "Service Studio",
			description: "Clean layout for studios and local services with pricing tiers.",
			doc: content.Document{
				Hero: &content.Hero{
					Title:    "Your practice, online",
					Subtitle: "Classes, schedules and bookings in one place",
					CTAText:  "Reservar",
				},
				Pricing: &content.Pricing{
					Title: "Plans",
					Tiers: []content.PricingTier{
						{Name: "Drop-in", Price: tierPrice(15), Period: "class"},
						{Name: "Monthly", Price: tierPrice(49), Period: "month", Featured: true},
						{Name: "Annual", Price: tierPrice(490), Period: "year"},
					},
				},
			},
		},
		{
			name:        "Artisan Shop",
			description: "Warm storefront layout for handmade goods, premium theme included.",
			premium:     true,
			doc: content.Document{
				Hero: &content.Hero{
					Title:    "Made by hand, built to last",
					Subtitle: "Small-batch goods from a real workshop",
					CTAText:  "Comprar",
				},
				Theme: &content.Theme{
					PrimaryColor: "#8b5e34",
					FontFamily:   "Lora",
				},
			},
		},
	}

	result := make([]templates.Template, 0, len(defs))
	for _, def := range defs {
		doc := def.doc
		doc.EnsureForm()
		data, err := doc.ToJSON()
		if err != nil {
			continue
		}
		result = append(result, templates.Template{
			Name:        def.name,
			Description: def.description,
			Content:     data,
			IsActive:    true,
			IsPremium:   def.premium,
		})
	}
	return result
}

// generateIPPool creates a pool of unique IPv4 addresses
func generateIPPool(count int) []string {
	seen := make(map[string]bool)
	var ips []string
	for len(ips) < count {
		ip := fmt.Sprintf("%d.%d.%d.%d", rand.IntN(255)+1, rand.IntN(256), rand.IntN(256), rand.IntN(256))
		if !seen[ip] {
			seen[ip] = true
			ips = append(ips, ip)
		}
	}
	return ips
}

// getUserAgents returns a list of common user agent strings
func getUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Safari/605.1.15",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 16_1_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Mobile/15E148 Safari/605.1",
		"Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Mobile Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
	}
}

// getReferrers returns a list of common referrer domains
func getReferrers() []string {
	return []string{
		"", // Direct visit
		"https://google.com",
		"https://instagram.com",
		"https://facebook.com",
		"https://twitter.com",
	}
}
