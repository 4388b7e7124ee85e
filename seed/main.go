package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"

	"github.com/afinmh/TajweeDo/seed/seeders"
	"github.com/afinmh/TajweeDo/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, catalog, store")
		driver   = flag.String("driver", "", "Database driver: sqlite or postgres (overrides DB_DRIVER)")
		dsn      = flag.String("db", "", "Database DSN or sqlite path (overrides DB_DATABASE / DATABASE_URL)")
		verbose  = flag.Bool("v", false, "Log every SQL statement")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	dbDriver := firstNonEmpty(*driver, os.Getenv("DB_DRIVER"), services.DriverSqlite)
	var dbDSN string
	if dbDriver == services.DriverPostgres {
		dbDSN = firstNonEmpty(*dsn, os.Getenv("DATABASE_URL"))
	} else {
		dbDSN = firstNonEmpty(*dsn, os.Getenv("DB_DATABASE"), "file:tajweedo.db?_busy_timeout=5000")
	}
	if dbDSN == "" {
		log.Fatal().Str("driver", dbDriver).Msg("No database DSN given")
	}

	level := logger.Warn
	if *verbose {
		level = logger.Info
	}

	db, err := services.OpenDatabase(dbDriver, dbDSN, level)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := services.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	log.Info().Str("driver", dbDriver).Msg("Connected to database")

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		err = mainSeeder.SeedAll()
	case "catalog":
		err = mainSeeder.SeedCatalogOnly()
	case "store":
		err = mainSeeder.SeedStoreOnly()
	default:
		log.Fatal().Msgf("Unknown seed type: %s. Use 'all', 'catalog' or 'store'", *seedType)
	}
	if err != nil {
		log.Fatal().Err(err).Str("type", *seedType).Msg("Seeding failed")
	}

	log.Info().Msg("Seeding operation completed successfully")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func showHelp() {
	fmt.Println(`
Database Seeding Tool for TajweeDo

Usage: go run ./seed [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, catalog, store
  -driver string
        sqlite or postgres (overrides DB_DRIVER)
  -db string
        Database DSN (overrides DB_DATABASE or DATABASE_URL)
  -v
        Log every SQL statement
  -help
        Show this help message

Examples:
  go run ./seed
  go run ./seed -type=store
  go run ./seed -driver=postgres -db="host=localhost user=postgres dbname=tajweedo sslmode=disable"`)
}
