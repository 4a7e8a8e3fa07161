package history

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store is the durable transcript log. Every write is a single INSERT or
// DELETE; there is no read-modify-write anywhere, so any number of handlers
// may share one Store.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Append writes one transcript row under the given epoch. Content is
// normalized to valid UTF-8 (invalid sequences dropped) and truncated to
// MaxContentChars before storage; neither condition is an error.
func (s *Store) Append(ctx context.Context, chatID, epoch int64, role string, authorID int64, messageRef, content string) error {
	row := &Row{
		ChatID:     chatID,
		AuthorID:   authorID,
		MessageRef: messageRef,
		Role:       role,
		Content:    Sanitize(content, MaxContentChars),
		CreatedAt:  time.Now().UTC(),
		Epoch:      epoch,
	}
	return s.db.WithContext(ctx).Create(row).Error
}

// RecentWindow returns up to limit most recent turns for (chat, epoch),
// oldest-first so the slice can lead a model prompt as-is. Rows from other
// epochs are excluded even though they still exist. An untracked chat or a
// fresh epoch yields an empty slice, not an error.
func (s *Store) RecentWindow(ctx context.Context, chatID, epoch int64, limit int) ([]Turn, error) {
	if limit <= 0 {
		return nil, nil
	}
	var rows []Row
	if err := s.db.WithContext(ctx).
		Where("chat_id = ? AND epoch = ?", chatID, epoch).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	// reverse to ASC (oldest -> newest)
	turns := make([]Turn, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		turns = append(turns, Turn{Role: rows[i].Role, Content: rows[i].Content})
	}
	return turns, nil
}

// Rows returns the full stored rows for (chat, epoch) oldest-first. Used by
// the ops API and tests to inspect orphaned epochs directly.
func (s *Store) Rows(ctx context.Context, chatID, epoch int64) ([]Row, error) {
	var rows []Row
	if err := s.db.WithContext(ctx).
		Where("chat_id = ? AND epoch = ?", chatID, epoch).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// PurgeOlderThan deletes rows across all chats and epochs older than maxAge.
// Idempotent; runs independently of the epoch counters, so it is safe on a
// timer next to live traffic. Returns the number of rows removed.
func (s *Store) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&Row{})
	return res.RowsAffected, res.Error
}
