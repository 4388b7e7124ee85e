package services

import (
	"context"
	"errors"

	"github.com/afinmh/TajweeDo/config"
	"github.com/afinmh/TajweeDo/model"
	"github.com/afinmh/TajweeDo/services/repositories"
	"github.com/afinmh/TajweeDo/shared"
	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ComposedLesson is the challenge set a learner works through for one lesson.
type ComposedLesson struct {
	Lesson     *model.Lesson
	Challenges []model.Challenge
	IsPooled   bool
}

// ChallengeIDs returns the composed ids in presentation order.
func (c *ComposedLesson) ChallengeIDs() []uint {
	ids := make([]uint, len(c.Challenges))
	for i, ch := range c.Challenges {
		ids[i] = ch.ID
	}
	return ids
}

// Find returns the composed challenge with id and its position.
func (c *ComposedLesson) Find(id uint) (*model.Challenge, int, bool) {
	for i := range c.Challenges {
		if c.Challenges[i].ID == id {
			return &c.Challenges[i], i, true
		}
	}
	return nil, -1, false
}

// ComposerService resolves which challenges make up a lesson. A lesson listed in the
// curriculum pools draws from the shared pool; any other lesson uses the challenges it owns.
type ComposerService struct {
	appContext.DefaultService

	curriculum  *config.Curriculum
	catalogRepo *repositories.CatalogRepository
}

const COMPOSER_SVC = "composer_svc"

func (svc ComposerService) Id() string {
	return COMPOSER_SVC
}

func (svc *ComposerService) Configure(ctx *appContext.Context) error {
	curriculum, err := config.LoadCurriculum()
	if err != nil {
		return err
	}
	svc.curriculum = curriculum

	return svc.DefaultService.Configure(ctx)
}

func (svc *ComposerService) Start() error {
	svc.catalogRepo = repositories.NewCatalogRepository(svc.Service(DATABASE_SVC).(*DatabaseService).Db())
	return nil
}

func NewComposerService(db *gorm.DB, curriculum *config.Curriculum) *ComposerService {
	return &ComposerService{
		curriculum:  curriculum,
		catalogRepo: repositories.NewCatalogRepository(db),
	}
}

func (svc *ComposerService) Curriculum() *config.Curriculum {
	return svc.curriculum
}

func (svc *ComposerService) IsPooled(lessonID uint) bool {
	return svc.curriculum.IsPooled(lessonID)
}

func (svc *ComposerService) Lesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	lesson, err := svc.catalogRepo.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Lesson not found")
		}
		return nil, HandleError(err)
	}
	return lesson, nil
}

// Compose returns the lesson's challenges in presentation order. Pool ids missing from
// storage are skipped and logged; the lesson is still served.
func (svc *ComposerService) Compose(ctx context.Context, lessonID uint) (*ComposedLesson, error) {
	lesson, err := svc.Lesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	ids, pooled := svc.curriculum.Pool(lessonID)
	if !pooled {
		challenges, err := svc.catalogRepo.ListChallenges(ctx, lessonID)
		if err != nil {
			return nil, HandleError(err)
		}
		return &ComposedLesson{Lesson: lesson, Challenges: challenges}, nil
	}

	fetched, err := svc.catalogRepo.GetChallengesByIDs(ctx, ids)
	if err != nil {
		return nil, HandleError(err)
	}

	byID := make(map[uint]model.Challenge, len(fetched))
	for _, ch := range fetched {
		byID[ch.ID] = ch
	}

	challenges := make([]model.Challenge, 0, len(ids))
	for _, id := range ids {
		ch, ok := byID[id]
		if !ok {
			dataIntegrityFaultsTotal.WithLabelValues("missing_pool_challenge").Inc()
			log.WithFields(log.Fields{
				"lesson_id":      lessonID,
				"challenge_id":   id,
				"config_version": svc.curriculum.Version,
			}).Warn("Pooled challenge missing from storage, skipping")
			continue
		}
		challenges = append(challenges, ch)
	}

	return &ComposedLesson{Lesson: lesson, Challenges: challenges, IsPooled: true}, nil
}
