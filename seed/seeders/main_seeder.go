package seeders

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in dependency order
func (s *MainSeeder) SeedAll() error {
	log.Info("Starting database seeding")

	if err := s.SeedCatalogOnly(); err != nil {
		log.WithError(err).Error("Catalog seeding failed")
		return err
	}

	if err := s.SeedStoreOnly(); err != nil {
		log.WithError(err).Error("Store seeding failed")
		return err
	}

	log.Info("Database seeding completed successfully")
	return nil
}

func (s *MainSeeder) SeedCatalogOnly() error {
	return NewCatalogSeeder(s.db).SeedCatalog()
}

func (s *MainSeeder) SeedStoreOnly() error {
	return NewStoreSeeder(s.db).SeedStore()
}
