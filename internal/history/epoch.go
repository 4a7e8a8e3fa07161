package history

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EpochRegistry tracks the per-chat reset generation. Bumping the epoch
// logically discards prior context in O(1) without deleting rows; reads
// filter by the current value.
type EpochRegistry struct {
	db *gorm.DB
}

func NewEpochRegistry(db *gorm.DB) *EpochRegistry {
	return &EpochRegistry{db: db}
}

// Current returns the chat's current epoch, lazily persisting a zero entry
// on first access. Concurrent first access is safe: the insert is
// ON CONFLICT DO NOTHING, so racing callers all settle on the stored value.
func (r *EpochRegistry) Current(ctx context.Context, chatID int64) (int64, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoNothing: true,
		}).
		Create(&ChatEpoch{ChatID: chatID, Epoch: 0}).Error; err != nil {
		return 0, err
	}

	var e ChatEpoch
	if err := r.db.WithContext(ctx).First(&e, "chat_id = ?", chatID).Error; err != nil {
		return 0, err
	}
	return e.Epoch, nil
}

// Advance atomically increments the chat's epoch and returns the new value,
// creating the entry at 1 when the chat was never seen. The increment is a
// true atomic add executed inside one transaction, never an application-side
// read-then-write, so two concurrent resets always observe distinct
// successive values.
func (r *EpochRegistry) Advance(ctx context.Context, chatID int64) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ChatEpoch{}).
			Where("chat_id = ?", chatID).
			Update("epoch", gorm.Expr("epoch + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// first reset for this chat; a concurrent creator turns this
			// into the same in-place increment
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "chat_id"}},
				DoUpdates: clause.Assignments(map[string]any{"epoch": gorm.Expr("epoch + 1")}),
			}).Create(&ChatEpoch{ChatID: chatID, Epoch: 1}).Error; err != nil {
				return err
			}
		}

		var e ChatEpoch
		if err := tx.First(&e, "chat_id = ?", chatID).Error; err != nil {
			return err
		}
		next = e.Epoch
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
