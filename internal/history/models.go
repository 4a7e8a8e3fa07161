package history

import "time"

// Roles recorded on transcript rows.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxContentChars is the transcript content budget, counted in runes (not
// bytes) so multi-byte text truncates predictably for model-context sizing.
const MaxContentChars = 4000

// Row is one immutable transcript entry. Rows are never updated; a chat
// "reset" only bumps the epoch counter, leaving earlier rows in place for
// the retention sweep to collect.
type Row struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID     int64     `gorm:"index:idx_chat_history_chat_id;not null" json:"chat_id"`
	AuthorID   int64     `gorm:"not null" json:"author_id"`
	MessageRef string    `gorm:"type:varchar(32);not null" json:"message_ref"`
	Role       string    `gorm:"type:varchar(16);not null" json:"role"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index:idx_chat_history_created_at;not null" json:"created_at"`
	Epoch      int64     `gorm:"index:idx_chat_history_epoch;not null;default:0" json:"epoch"`
}

func (Row) TableName() string { return "chat_history" }

// ChatEpoch holds the current reset generation for a chat.
type ChatEpoch struct {
	ChatID int64 `gorm:"primaryKey" json:"chat_id"`
	Epoch  int64 `gorm:"not null;default:0" json:"epoch"`
}

func (ChatEpoch) TableName() string { return "chat_epochs" }

// Turn is the (role, content) pair handed to the model as prior context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
