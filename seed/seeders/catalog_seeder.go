package seeders

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/afinmh/TajweeDo/model"
)

//go:embed catalog.yaml
var catalogFixture []byte

type catalogFile struct {
	Courses    []courseFixture    `yaml:"courses"`
	Units      []unitFixture      `yaml:"units"`
	Lessons    []lessonFixture    `yaml:"lessons"`
	Challenges []challengeFixture `yaml:"challenges"`
	StoreItems []storeItemFixture `yaml:"store_items"`
}

type courseFixture struct {
	ID       uint   `yaml:"id"`
	Title    string `yaml:"title"`
	ImageSrc string `yaml:"image_src"`
}

type unitFixture struct {
	ID          uint   `yaml:"id"`
	CourseID    uint   `yaml:"course_id"`
	Order       int    `yaml:"order"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type lessonFixture struct {
	ID     uint   `yaml:"id"`
	UnitID uint   `yaml:"unit_id"`
	Order  int    `yaml:"order"`
	Title  string `yaml:"title"`
}

type challengeFixture struct {
	ID       uint            `yaml:"id"`
	LessonID uint            `yaml:"lesson_id"`
	Type     string          `yaml:"type"`
	Order    int             `yaml:"order"`
	Question string          `yaml:"question"`
	Options  []optionFixture `yaml:"options"`
}

type optionFixture struct {
	ID      uint   `yaml:"id"`
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

type storeItemFixture struct {
	ID          uint   `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PricePoints int    `yaml:"price_points"`
	ImageSrc    string `yaml:"image_src"`
}

func loadCatalog() (*catalogFile, error) {
	var f catalogFile
	if err := yaml.Unmarshal(catalogFixture, &f); err != nil {
		return nil, fmt.Errorf("parse catalog fixture: %w", err)
	}
	for _, ch := range f.Challenges {
		correct := 0
		for _, opt := range ch.Options {
			if opt.Correct {
				correct++
			}
		}
		if correct != 1 {
			return nil, fmt.Errorf("challenge %d has %d correct options", ch.ID, correct)
		}
	}
	return &f, nil
}

// createIfMissing inserts row unless a row with the same id exists.
func createIfMissing[T any](tx *gorm.DB, id uint, label string, row *T) error {
	var existing T
	err := tx.Where("id = ?", id).First(&existing).Error
	if err == nil {
		log.Debugf("%s %d already exists, skipping", label, id)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
		return fmt.Errorf("create %s %d: %w", label, id, err)
	}
	log.Infof("Created %s %d", label, id)
	return nil
}

// CatalogSeeder loads courses, units, lessons and challenges from the embedded fixture.
type CatalogSeeder struct {
	db *gorm.DB
}

func NewCatalogSeeder(db *gorm.DB) *CatalogSeeder {
	return &CatalogSeeder{db: db}
}

func (s *CatalogSeeder) SeedCatalog() error {
	f, err := loadCatalog()
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range f.Courses {
			row := model.Course{ID: c.ID, Title: c.Title, Slug: slug.Make(c.Title), ImageSrc: c.ImageSrc}
			if err := createIfMissing(tx, c.ID, "course", &row); err != nil {
				return err
			}
		}
		for _, u := range f.Units {
			row := model.Unit{ID: u.ID, CourseID: u.CourseID, Title: u.Title, Description: u.Description, Order: u.Order}
			if err := createIfMissing(tx, u.ID, "unit", &row); err != nil {
				return err
			}
		}
		for _, l := range f.Lessons {
			row := model.Lesson{ID: l.ID, UnitID: l.UnitID, Title: l.Title, Order: l.Order}
			if err := createIfMissing(tx, l.ID, "lesson", &row); err != nil {
				return err
			}
		}
		for _, ch := range f.Challenges {
			row := model.Challenge{ID: ch.ID, LessonID: ch.LessonID, Type: ch.Type, Question: ch.Question, Order: ch.Order}
			if err := createIfMissing(tx, ch.ID, "challenge", &row); err != nil {
				return err
			}
			for _, opt := range ch.Options {
				optRow := model.ChallengeOption{ID: opt.ID, ChallengeID: ch.ID, Text: opt.Text, Correct: opt.Correct}
				if err := createIfMissing(tx, opt.ID, "challenge option", &optRow); err != nil {
					return err
				}
			}
		}
		log.WithFields(log.Fields{
			"courses":    len(f.Courses),
			"units":      len(f.Units),
			"lessons":    len(f.Lessons),
			"challenges": len(f.Challenges),
		}).Info("Catalog seeding completed")
		return nil
	})
}
