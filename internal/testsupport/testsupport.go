package testsupport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"landkit/internal"
	"landkit/internal/auth"
	"landkit/internal/clicks"
	"landkit/internal/config"
	"landkit/internal/content"
	"landkit/internal/landings"
	"landkit/internal/leads"
	"landkit/internal/templates"
	"landkit/internal/users"

	"github.com/karloscodes/cartridge/cache"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager with landkit's interface
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

// Ensure TestDBManager implements cartridge.DBManager
var _ cartridge.DBManager = (*TestDBManager)(nil)

// allModels returns all landkit models for migration
func allModels() []any {
	return []any{
		&cache.CacheRecord{},
		&users.User{},
		&templates.Template{},
		&landings.Landing{},
		&leads.Lead{},
		&clicks.ProductClick{},
	}
}

// SetupTestDB creates a test database with all landkit models migrated.
// Uses a named in-memory database with cache=shared to allow multiple
// connections to share the same database within a test. Caches the
// database by test name so multiple calls within the same test return
// the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Use root test name for caching to handle closure issues where
	// setup functions capture the outer t while t.Run has subtest t
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	cfg := config.GetConfig()

	// SAFETY CHECK: Ensure we're in test environment
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set LANDKIT_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	logger := GetLogger()
	dbManager := NewTestDBManager(db)

	return dbManager, logger
}

// CleanAllTables truncates every landkit table. Subtests share the
// cached root database, so each one starts by wiping state.
func CleanAllTables(db *gorm.DB) {
	tables := []string{
		"product_clicks",
		"leads",
		"landings",
		"templates",
		"users",
	}
	for _, table := range tables {
		db.Exec("DELETE FROM " + table)
		db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table)
	}
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestUser creates a user with a bcrypt-hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, email, password string) *users.User {
	t.Helper()

	var user users.User
	if db.Where("email = ?", email).First(&user).Error == nil {
		return &user
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	user = users.User{
		Name:              "Test User",
		Email:             email,
		EncryptedPassword: string(hashed),
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// CreateTestTemplate creates an active template with a minimal content
// document
func CreateTestTemplate(t *testing.T, db *gorm.DB, name string) *templates.Template {
	t.Helper()

	doc := content.Document{
		Hero: &content.Hero{Title: "Test Hero", CTAText: "Buy"},
	}
	doc.EnsureForm()
	data, err := doc.ToJSON()
	require.NoError(t, err)

	tpl := templates.Template{
		Name:     name,
		Content:  data,
		IsActive: true,
	}
	require.NoError(t, db.Create(&tpl).Error)
	return &tpl
}

// CreateTestLanding creates an active landing owned by the user
func CreateTestLanding(t *testing.T, db *gorm.DB, userID, templateID uint, slug string) *landings.Landing {
	t.Helper()

	doc := content.Document{
		Hero: &content.Hero{Title: "Landing Hero"},
	}
	doc.EnsureForm()
	data, err := doc.ToJSON()
	require.NoError(t, err)

	landing := landings.Landing{
		UserID:     userID,
		TemplateID: templateID,
		Title:      "Test Landing " + slug,
		Slug:       slug,
		Content:    data,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&landing).Error)
	return &landing
}

// CreateTestLead inserts a lead row directly, bypassing the capture
// transaction, and does NOT touch the landing counter
func CreateTestLead(t *testing.T, db *gorm.DB, landingID uint, name, email string) *leads.Lead {
	t.Helper()

	lead := leads.Lead{
		LandingID: landingID,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&lead).Error)
	return &lead
}

// ClickOptions tweaks CreateTestClick fixtures
type ClickOptions struct {
	Price     *float64
	Category  string
	SessionID string
	Button    string
	CreatedAt time.Time
}

// CreateTestClick inserts a product click row directly
func CreateTestClick(t *testing.T, db *gorm.DB, landingID uint, productName string, opts ClickOptions) *clicks.ProductClick {
	t.Helper()

	click := clicks.ProductClick{
		LandingID:    landingID,
		ProductName:  productName,
		ProductPrice: opts.Price,
		ButtonText:   clicks.DefaultButtonText,
	}
	if opts.Category != "" {
		click.ProductCategory = &opts.Category
	}
	if opts.SessionID != "" {
		click.SessionID = &opts.SessionID
	}
	if opts.Button != "" {
		click.ButtonText = opts.Button
	}
	if !opts.CreatedAt.IsZero() {
		click.CreatedAt = opts.CreatedAt
	} else {
		click.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, db.Create(&click).Error)
	return &click
}

// ContentJSON builds a datatypes.JSON column value from a map
func ContentJSON(t *testing.T, m map[string]any) datatypes.JSON {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return datatypes.JSON(data)
}

// AuthHeader returns the bearer Authorization header value for the user
func AuthHeader(t *testing.T, userID uint) string {
	t.Helper()

	cfg := config.GetConfig()
	token, err := auth.IssueToken(cfg.JWTSecret, time.Hour, userID)
	require.NoError(t, err)
	return "Bearer " + token
}

// CreateMinimalTestApp creates a test Fiber app with all routes
func CreateMinimalTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	dbManager := NewTestDBManager(db)
	appConfig := config.GetConfig()
	appConfig.Environment = config.Test

	cfg := cartridge.DefaultServerConfig()
	cfg.Config = appConfig
	cfg.Logger = GetLogger()
	cfg.DBManager = dbManager
	// API requests in tests carry no Sec-Fetch-Site header
	cfg.EnableSecFetchSite = false

	srv, err := cartridge.NewServer(cfg)
	require.NoError(t, err)

	internal.MountAppRoutes(srv)
	return srv.App()
}
