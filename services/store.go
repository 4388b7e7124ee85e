package services

import (
	"context"
	"errors"

	"github.com/afinmh/TajweeDo/dto"
	"github.com/afinmh/TajweeDo/model"
	"github.com/afinmh/TajweeDo/services/repositories"
	"github.com/afinmh/TajweeDo/shared"
	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StoreService sells cosmetic items for points and records ownership.
type StoreService struct {
	appContext.DefaultService

	db           *gorm.DB
	ledgerSvc    *LedgerService
	storeRepo    *repositories.StoreRepository
	progressRepo *repositories.ProgressRepository
}

const STORE_SVC = "store_svc"

func (svc StoreService) Id() string {
	return STORE_SVC
}

func (svc *StoreService) Start() error {
	svc.init(svc.Service(DATABASE_SVC).(*DatabaseService).Db())
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	return nil
}

func NewStoreService(db *gorm.DB) *StoreService {
	svc := &StoreService{}
	svc.init(db)
	return svc
}

func (svc *StoreService) init(db *gorm.DB) {
	svc.db = db
	svc.storeRepo = repositories.NewStoreRepository(db)
	svc.progressRepo = repositories.NewProgressRepository(db)
}

func (svc *StoreService) ListItems(ctx context.Context, userID string) ([]dto.StoreItemResponse, error) {
	items, err := svc.storeRepo.ListActiveItems(ctx)
	if err != nil {
		return nil, HandleError(err)
	}
	owned, err := svc.storeRepo.OwnedItemIDs(ctx, userID)
	if err != nil {
		return nil, HandleError(err)
	}

	resp := make([]dto.StoreItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, dto.StoreItemResponse{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			PricePoints: item.PricePoints,
			ImageSrc:    item.ImageSrc,
			Owned:       owned[item.ID],
		})
	}
	return resp, nil
}

// GrantItem records ownership inside tx without charging. Granting an owned item is a no-op.
func (svc *StoreService) GrantItem(ctx context.Context, tx *gorm.DB, userID string, itemID uint, source string) (bool, error) {
	return svc.storeRepo.WithTx(tx).GrantItem(ctx, userID, itemID, source)
}

// Purchase charges the item price and grants it in one transaction. An item the user
// already owns is reported as already_owned and costs nothing.
func (svc *StoreService) Purchase(ctx context.Context, userID string, req dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	item, err := svc.storeRepo.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Item not found")
		}
		return nil, HandleError(err)
	}
	if !item.Active {
		return nil, shared.NewNotFoundError(nil, "Item not found")
	}

	resp := &dto.PurchaseResponse{Status: shared.PurchaseStatusPurchased}
	var progress *model.UserProgress
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progressRepo := svc.progressRepo.WithTx(tx)

		granted, err := svc.GrantItem(ctx, tx, userID, item.ID, model.PurchaseSourceStore)
		if err != nil {
			return err
		}
		if !granted {
			resp.Status = shared.PurchaseStatusAlreadyOwned
		} else {
			rows, err := progressRepo.AddPoints(ctx, userID, -item.PricePoints)
			if err != nil {
				return err
			}
			if rows == 0 {
				if _, err := progressRepo.GetUserProgress(ctx, userID); err != nil {
					return err
				}
				return shared.ErrInsufficientFunds
			}
		}

		if req.Equip {
			if err := progressRepo.SetUserImage(ctx, userID, item.ImageSrc); err != nil {
				return err
			}
			resp.Equipped = true
		}

		progress, err = progressRepo.GetUserProgress(ctx, userID)
		return err
	})

	switch {
	case errors.Is(err, shared.ErrInsufficientFunds):
		purchasesTotal.WithLabelValues("insufficient_funds").Inc()
		return nil, shared.ErrInsufficientFunds.WithData(map[string]interface{}{
			"price_points": item.PricePoints,
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, shared.NewNotFoundError(err, "User progress not found, select a course first")
	case err != nil:
		return nil, HandleError(err)
	}

	resp.NewPoints = progress.Points
	purchasesTotal.WithLabelValues(resp.Status).Inc()
	if resp.Status == shared.PurchaseStatusPurchased || resp.Equipped {
		_ = svc.ledgerSvc.InvalidateLeaderboard(ctx)
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"item_id": item.ID,
		"status":  resp.Status,
	}).Info("Store purchase")
	return resp, nil
}
