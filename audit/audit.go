// Package audit keeps a local ledger of committed operations. It is a
// secondary record: failures are logged by callers and never block the
// primary sheet mutation.
package audit

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Operation kinds.
const (
	OpRent    = "rent"
	OpReturn  = "return"
	OpExtend  = "extend"
	OpReplace = "replace"
)

// Entry is one committed operation.
type Entry struct {
	ID        uint  `gorm:"primaryKey"`
	CreatedAt time.Time
	ChatID    int64 `gorm:"index"`
	Op        string
	Plate     string
	Amount    int
	Note      string
}

// Store wraps the sqlite ledger.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the ledger database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Record appends one entry.
func (s *Store) Record(chatID int64, op, plate string, amount int, note string) error {
	return s.db.Create(&Entry{
		ChatID: chatID,
		Op:     op,
		Plate:  plate,
		Amount: amount,
		Note:   note,
	}).Error
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.Order("id desc").Limit(limit).Find(&entries).Error
	return entries, err
}
