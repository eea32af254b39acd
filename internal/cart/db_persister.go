package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartSnapshot struct {
	CartID    string     `gorm:"column:cart_id;primaryKey"`
	Payload   string     `gorm:"column:payload"`
	ItemCount int        `gorm:"column:item_count"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
}

func (cartSnapshot) TableName() string {
	return "cart_snapshots"
}

// DBPersister stores snapshots in the cart_snapshots table created by the goose migrations.
type DBPersister struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewDBPersister(db *gorm.DB, ttl time.Duration) (*DBPersister, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("cart ttl must not be negative")
	}
	return &DBPersister{db: db, ttl: ttl, now: time.Now}, nil
}

func (p *DBPersister) Load(ctx context.Context, key string) (Cart, error) {
	var row cartSnapshot
	err := p.db.WithContext(ctx).
		Where("cart_id = ?", key).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Cart{}, nil
		}
		return Cart{}, fmt.Errorf("load cart %s: %w", key, err)
	}
	if row.ExpiresAt != nil && !row.ExpiresAt.After(p.now().UTC()) {
		return Cart{}, nil
	}
	return decodeSnapshot([]byte(row.Payload))
}

func (p *DBPersister) Save(ctx context.Context, key string, cart Cart) error {
	raw, err := encodeSnapshot(cart)
	if err != nil {
		return err
	}
	now := p.now().UTC()
	row := cartSnapshot{
		CartID:    key,
		Payload:   string(raw),
		ItemCount: cart.TotalItems(),
		UpdatedAt: now,
	}
	if p.ttl > 0 {
		expires := now.Add(p.ttl)
		row.ExpiresAt = &expires
	}
	err = p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "item_count", "updated_at", "expires_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cart %s: %w", key, err)
	}
	return nil
}

func (p *DBPersister) Delete(ctx context.Context, key string) error {
	err := p.db.WithContext(ctx).
		Where("cart_id = ?", key).
		Delete(&cartSnapshot{}).Error
	if err != nil {
		return fmt.Errorf("delete cart %s: %w", key, err)
	}
	return nil
}

// PurgeExpired removes snapshots whose expiry has passed and returns how many were deleted.
func (p *DBPersister) PurgeExpired(ctx context.Context) (int64, error) {
	res := p.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", p.now().UTC()).
		Delete(&cartSnapshot{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge expired carts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
