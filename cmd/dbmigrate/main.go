package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/smartlime/spam-restrictor-bot/internal/config"
	"github.com/smartlime/spam-restrictor-bot/internal/models"
	"github.com/smartlime/spam-restrictor-bot/internal/storage"

	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	action := flag.String("action", "migrate", "Action to perform (migrate, reset, status)")
	yes := flag.Bool("yes", false, "Skip the reset confirmation")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := storage.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := run(db, *action, *yes, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("%s failed: %v", *action, err)
	}
}

func run(db *gorm.DB, action string, confirmed bool, in io.Reader, out io.Writer) error {
	switch action {
	case "migrate":
		if err := migrateDatabase(db, out); err != nil {
			return err
		}
		fmt.Fprintln(out, "Migration completed successfully")
	case "reset":
		if err := resetDatabase(db, confirmed, in, out); err != nil {
			return err
		}
		fmt.Fprintln(out, "Database reset completed successfully")
	case "status":
		return checkStatus(db, out)
	default:
		return fmt.Errorf("unknown action: %s", action)
	}
	return nil
}

// migrateDatabase creates or updates both lifecycle tables
func migrateDatabase(db *gorm.DB, out io.Writer) error {
	fmt.Fprintln(out, "Migrating database...")
	return storage.NewRestrictionRepository(db).MigrateTable()
}

// resetDatabase drops tables and recreates them
func resetDatabase(db *gorm.DB, confirmed bool, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Resetting database...")

	if !confirmed {
		fmt.Fprint(out, "WARNING: This will delete all data! Are you sure? (y/N): ")
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if strings.TrimSpace(strings.ToLower(answer)) != "y" {
			return fmt.Errorf("operation cancelled by user")
		}
	}

	if err := db.Migrator().DropTable(&models.RestrictedUser{}, &models.BannedUser{}); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	return migrateDatabase(db, out)
}

// checkStatus reports which tables exist and how many rows they hold
func checkStatus(db *gorm.DB, out io.Writer) error {
	fmt.Fprintln(out, "Checking database status...")

	tables := []struct {
		name  string
		model interface{}
	}{
		{"restricted_users", &models.RestrictedUser{}},
		{"banned_users", &models.BannedUser{}},
	}

	missing := false
	for _, table := range tables {
		if db.Migrator().HasTable(table.model) {
			fmt.Fprintf(out, "✅ %s table exists\n", table.name)
		} else {
			fmt.Fprintf(out, "❌ %s table does not exist\n", table.name)
			missing = true
		}
	}
	if missing {
		return nil
	}

	stats, err := storage.NewRestrictionRepository(db).Stats(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "   - %d restricted members\n", stats.RestrictedUsers)
	fmt.Fprintf(out, "   - %d banned members\n", stats.BannedUsers)
	return nil
}
