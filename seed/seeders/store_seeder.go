package seeders

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/afinmh/TajweeDo/model"
)

// StoreSeeder loads the avatar items referenced by the daily reward table.
type StoreSeeder struct {
	db *gorm.DB
}

func NewStoreSeeder(db *gorm.DB) *StoreSeeder {
	return &StoreSeeder{db: db}
}

func (s *StoreSeeder) SeedStore() error {
	f, err := loadCatalog()
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, it := range f.StoreItems {
			row := model.StoreItem{
				ID:          it.ID,
				Name:        it.Name,
				Description: it.Description,
				PricePoints: it.PricePoints,
				ImageSrc:    it.ImageSrc,
				Active:      true,
			}
			if err := createIfMissing(tx, it.ID, "store item", &row); err != nil {
				return err
			}
		}
		log.WithField("items", len(f.StoreItems)).Info("Store seeding completed")
		return nil
	})
}
