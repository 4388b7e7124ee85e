package model

import "time"

type StoreItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	PricePoints int       `json:"price_points" gorm:"not null;default:0"`
	ImageSrc    string    `json:"image_src"`
	Active      bool      `json:"active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserPurchase records ownership. A user owns an item at most once.
type UserPurchase struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_purchase_user_item"`
	ItemID    uint      `json:"item_id" gorm:"not null;uniqueIndex:idx_user_purchase_user_item"`
	Source    string    `json:"source" gorm:"not null"` // purchase, daily_login
	CreatedAt time.Time `json:"created_at"`
}

const (
	PurchaseSourceStore      = "purchase"
	PurchaseSourceDailyLogin = "daily_login"
)

// Models lists every table the storage services migrate.
func Models() []interface{} {
	return []interface{}{
		&Course{},
		&Unit{},
		&Lesson{},
		&Challenge{},
		&ChallengeOption{},
		&UserProgress{},
		&LessonProgress{},
		&ChallengeProgress{},
		&DailyLoginState{},
		&StoreItem{},
		&UserPurchase{},
	}
}
