package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/bootstrap"
	"github.com/mo-amir99/lms-progress-server/pkg/config"
	"github.com/mo-amir99/lms-progress-server/pkg/database"
	"github.com/mo-amir99/lms-progress-server/pkg/database/migrations"
	"github.com/mo-amir99/lms-progress-server/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	db, err := database.ConnectWithRetry(context.Background(), cfg.Database, appLogger, database.Options{}, 0, 0)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	fmt.Println("\nWARNING: This will DROP ALL TABLES in the database!")
	fmt.Println("   This action CANNOT be undone.")
	fmt.Print("\nType 'DROP ALL TABLES' to confirm: ")

	reader := bufio.NewReader(os.Stdin)
	confirmation, _ := reader.ReadString('\n')
	if strings.TrimSpace(confirmation) != "DROP ALL TABLES" {
		fmt.Println("\nOperation cancelled. Database unchanged.")
		return
	}

	// The version table goes too, so the migrate script rebuilds from scratch.
	models := append([]interface{}{&migrations.Record{}}, bootstrap.Models()...)
	dropped := 0

	// Children first.
	for i := len(models) - 1; i >= 0; i-- {
		table, err := tableName(db, models[i])
		if err != nil {
			appLogger.Warn("Failed to resolve table", slog.String("error", err.Error()))
			continue
		}

		if err := dropTable(db, cfg.Database.Driver, table); err != nil {
			appLogger.Warn("Failed to drop table", slog.String("table", table), slog.String("error", err.Error()))
			continue
		}

		appLogger.Info("Dropped table", slog.String("table", table))
		dropped++
	}

	fmt.Printf("\nSuccessfully dropped %d tables.\n", dropped)
	fmt.Println("   Run the migrate script to recreate them.")
}

func tableName(db *gorm.DB, model interface{}) (string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return "", err
	}
	return stmt.Schema.Table, nil
}

func dropTable(db *gorm.DB, driver, table string) error {
	if driver == config.DriverSQLite {
		return db.Migrator().DropTable(table)
	}
	return db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pq.QuoteIdentifier(table))).Error
}
