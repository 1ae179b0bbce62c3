package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/paisabot/paisabot/internal/errors"
	"github.com/paisabot/paisabot/internal/lexicon"
)

const (
	keyBudget       = "config/budget"
	keyVocabularies = "config/vocabularies"
)

// Store owns the ledger rows in SQLite and the small configuration blobs
// (budget, vocabularies) in BadgerDB. The chat and analytics packages never
// touch it directly; they work on snapshots handed to them per call.
type Store struct {
	db *gorm.DB
	kv *badger.DB
}

// OpenSQLite opens the ledger database with the usual pragmas.
func OpenSQLite(path string) (*gorm.DB, error) {
	sqliteDB, err := sql.Open("sqlite", path+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-64000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return db, nil
}

// OpenBadger opens the key-value store for configuration blobs.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(16 << 20)
	return badger.Open(opts)
}

// NewStore wires a store over open handles and migrates the schema.
func NewStore(db *gorm.DB, kv *badger.DB) (*Store, error) {
	if err := db.AutoMigrate(&Transaction{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger schema: %w", err)
	}
	db.Exec("CREATE INDEX IF NOT EXISTS idx_transactions_type_date ON transactions(type, date)")
	return &Store{db: db, kv: kv}, nil
}

// Close releases both databases.
func (s *Store) Close() error {
	if s.kv != nil {
		if err := s.kv.Close(); err != nil {
			return err
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

// Append commits a new transaction. A missing ID or creation time is filled
// in here so callers can hand over drafts.
func (s *Store) Append(tx *Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	tx.CreatedAt = time.Now()

	return s.db.Create(tx).Error
}

// Remove deletes a transaction by id.
func (s *Store) Remove(id string) error {
	res := s.db.Where("id = ?", id).Delete(&Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// Get retrieves a single transaction, nil when absent.
func (s *Store) Get(id string) (*Transaction, error) {
	var tx Transaction
	err := s.db.Where("id = ?", id).First(&tx).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &tx, err
}

// List returns the full ledger, newest first. This is the snapshot every
// chat and analytics call works on.
func (s *Store) List() ([]Transaction, error) {
	var txs []Transaction
	err := s.db.Order("date DESC, created_at DESC").Find(&txs).Error
	return txs, err
}

// Filters narrows a List query. Zero values mean no constraint.
type Filters struct {
	Category string
	Type     TransactionType
	Since    time.Time
	Until    time.Time
	Limit    int
}

// ListFiltered returns matching transactions, newest first.
func (s *Store) ListFiltered(f Filters) ([]Transaction, error) {
	query := s.db.Model(&Transaction{})
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if !f.Since.IsZero() {
		query = query.Where("date >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		query = query.Where("date <= ?", f.Until)
	}
	query = query.Order("date DESC, created_at DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var txs []Transaction
	err := query.Find(&txs).Error
	return txs, err
}

// SaveBudget persists the budget configuration.
func (s *Store) SaveBudget(cfg BudgetConfig) error {
	return s.putJSON(keyBudget, cfg)
}

// LoadBudget returns the stored budget. The second return is false when the
// user has not configured one yet.
func (s *Store) LoadBudget() (BudgetConfig, bool, error) {
	var cfg BudgetConfig
	found, err := s.getJSON(keyBudget, &cfg)
	return cfg, found, err
}

// SaveVocabularies persists the user's category, payment-mode and UPI-app
// lists.
func (s *Store) SaveVocabularies(v lexicon.Vocabularies) error {
	return s.putJSON(keyVocabularies, v)
}

// SeedVocabularies stores v only when no vocabularies were saved yet, so
// configured defaults never clobber edits made through the API.
func (s *Store) SeedVocabularies(v lexicon.Vocabularies) error {
	if len(v.Categories) == 0 {
		return nil
	}
	var existing lexicon.Vocabularies
	found, err := s.getJSON(keyVocabularies, &existing)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return s.putJSON(keyVocabularies, v)
}

// LoadVocabularies returns the stored vocabularies, falling back to the
// defaults when none were saved.
func (s *Store) LoadVocabularies() (lexicon.Vocabularies, error) {
	var v lexicon.Vocabularies
	found, err := s.getJSON(keyVocabularies, &v)
	if err != nil {
		return lexicon.Vocabularies{}, err
	}
	if !found {
		return lexicon.DefaultVocabularies(), nil
	}
	return v, nil
}

func (s *Store) putJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *Store) getJSON(key string, out interface{}) (bool, error) {
	err := s.kv.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
