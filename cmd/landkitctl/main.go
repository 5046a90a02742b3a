// main.go - Admin control tool for landkit
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"
	"gorm.io/gorm"

	"landkit/internal"
	"landkit/internal/landings"
	"landkit/internal/seeder"
	"landkit/internal/users"

	"log/slog"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&CreateUserCommand{},
	&ChangePasswordCommand{},
	&MigrateCommand{},
	&SeedCommand{},
	&BackfillFormsCommand{},
	&StatusCommand{},
	&HelpCommand{},
}

func main() {
	flag.Parse()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Printf("Warning: Failed to initialize app: %v", err)
		log.Println("Proceeding with limited functionality...")
	}

	defer func() {
		if app != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				log.Printf("Warning: Cleanup error: %v", err)
			}
		}
	}()

	if err := cmd.Execute(ctx, app, args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}

	log.Printf("Command %s completed successfully", cmd.Name())
}

// CreateUserCommand creates an account from the command line
type CreateUserCommand struct{}

func (c *CreateUserCommand) Name() string { return "create-user" }

func (c *CreateUserCommand) Description() string {
	return "Creates a user account (prompts for the password when omitted)"
}

func (c *CreateUserCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s <name> <email> [password]", c.Name())
	}

	name := args[0]
	email := args[1]

	var password string
	if len(args) >= 3 {
		password = args[2]
	} else {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	db, err := connection(app)
	if err != nil {
		return err
	}

	log.Printf("Creating user with email: %s", email)
	if _, err := users.CreateUser(db, slog.Default(), name, email, password); err != nil {
		if errors.Is(err, users.ErrUserExists) {
			log.Printf("User %s already exists", email)
			return nil
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// ChangePasswordCommand updates the password of an existing account
type ChangePasswordCommand struct{}

func (c *ChangePasswordCommand) Name() string { return "change-password" }

func (c *ChangePasswordCommand) Description() string {
	return "Changes the password of an existing user"
}

func (c *ChangePasswordCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	var email string
	if len(args) >= 1 {
		email = args[0]
	} else {
		fmt.Print("Enter email: ")
		input, _ := reader.ReadString('\n')
		email = strings.TrimSpace(input)
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}

	db, err := connection(app)
	if err != nil {
		return err
	}

	if _, err := users.FindByEmail(db, email); err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}

	var newPassword string
	if len(args) >= 2 {
		newPassword = args[1]
	} else {
		newPassword, err = promptPassword()
		if err != nil {
			return err
		}
	}
	if newPassword == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if err := users.ChangePassword(db, email, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Println("Password updated successfully")
	return nil
}

// MigrateCommand runs database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string        { return "migrate" }
func (c *MigrateCommand) Description() string { return "Runs database migrations" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if app == nil {
		return fmt.Errorf("app initialization failed, cannot run migrations")
	}

	log.Println("Running database migrations...")
	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations completed successfully")
	return nil
}

// SeedCommand populates the DB with demo data
type SeedCommand struct{}

func (c *SeedCommand) Name() string        { return "seed" }
func (c *SeedCommand) Description() string { return "Seeds the database with sample data" }

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	leadCount := fs.Int("leads", 25, "approximate number of demo sessions per landing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if app == nil {
		return fmt.Errorf("unable to initialise app")
	}

	se := seeder.NewSeeder(app.DBManager, slog.Default(), *leadCount)
	return se.Run(ctx)
}

// BackfillFormsCommand installs the default contact form on landings
// whose content lacks one
type BackfillFormsCommand struct{}

func (c *BackfillFormsCommand) Name() string { return "backfill-forms" }

func (c *BackfillFormsCommand) Description() string {
	return "Adds the default contact form to landings missing one"
}

func (c *BackfillFormsCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db, err := connection(app)
	if err != nil {
		return err
	}

	updated, err := landings.BackfillDefaultForms(db, slog.Default())
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	log.Printf("Backfilled %d landing(s)", updated)
	return nil
}

// StatusCommand implements a command to check the system status
type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Shows the current system status" }

func (c *StatusCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db, err := connection(app)
	if err != nil {
		return err
	}

	var userCount, landingCount, leadCount int64
	if err := db.Table("users").Count(&userCount).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	db.Table("landings").Count(&landingCount)
	db.Table("leads").Count(&leadCount)

	log.Println("System Status:")
	log.Println("- Database: Connected")
	log.Printf("- Users: %d", userCount)
	log.Printf("- Landings: %d", landingCount)
	log.Printf("- Leads: %d", leadCount)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %w", err)
	}

	log.Printf("- Max Open Connections: %d", sqlDB.Stats().MaxOpenConnections)
	log.Printf("- Open Connections: %d", sqlDB.Stats().OpenConnections)
	log.Printf("- In Use: %d", sqlDB.Stats().InUse)
	log.Printf("- Idle: %d", sqlDB.Stats().Idle)

	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows usage information" }

func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fmt.Println("Usage: landkitctl [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}

	return nil
}

// Helper functions

func connection(app *internal.Application) (*gorm.DB, error) {
	if app == nil {
		return nil, fmt.Errorf("app initialization failed, cannot connect to database")
	}
	return app.DBManager.GetConnection(), nil
}

// promptPassword reads the password twice without echoing it.
func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	pwd1, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Print("Confirm password: ")
	pwd2, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(pwd1) != string(pwd2) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwd1), nil
}

// parseArgs parses the command name and arguments
func parseArgs() (string, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	fmt.Println("Usage: landkitctl [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}

	os.Exit(1)
}
