package repositories

import (
	"context"

	"github.com/afinmh/TajweeDo/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreRepository struct {
	BaseRepository
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *StoreRepository) WithTx(tx *gorm.DB) *StoreRepository {
	return NewStoreRepository(tx)
}

func (ds *StoreRepository) ListActiveItems(ctx context.Context) ([]model.StoreItem, error) {
	var items []model.StoreItem
	if err := ds.conn(ctx).Where("active = ?", true).Order("price_points ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (ds *StoreRepository) GetItem(ctx context.Context, itemID uint) (*model.StoreItem, error) {
	var item model.StoreItem
	if err := ds.conn(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (ds *StoreRepository) OwnedItemIDs(ctx context.Context, userID string) (map[uint]bool, error) {
	var ids []uint
	if err := ds.conn(ctx).Model(&model.UserPurchase{}).Where("user_id = ?", userID).Pluck("item_id", &ids).Error; err != nil {
		return nil, err
	}
	owned := make(map[uint]bool, len(ids))
	for _, id := range ids {
		owned[id] = true
	}
	return owned, nil
}

// GrantItem records ownership once. Returns false when the user already owned the item.
func (ds *StoreRepository) GrantItem(ctx context.Context, userID string, itemID uint, source string) (bool, error) {
	id, err := newID()
	if err != nil {
		return false, err
	}
	res := ds.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserPurchase{
		ID:     id,
		UserID: userID,
		ItemID: itemID,
		Source: source,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
