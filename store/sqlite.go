package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/optfolio/optfolio"
)

// dbPosition is a persisted position row. Decimal values are stored as
// strings to keep them exact; sqlite would otherwise coerce them to float.
type dbPosition struct {
	gorm.Model
	Key         string `gorm:"uniqueIndex"`
	Strategy    string
	Ticker      string `gorm:"index"`
	Expiration  string
	OptionType  string
	Quantity    string
	Price       string
	LastTxnDate string
	Legs        []dbLeg `gorm:"foreignKey:PositionID"`
}

// dbLeg is one leg row of a multi-leg position.
type dbLeg struct {
	gorm.Model
	PositionID uint `gorm:"index"`
	Strike     string
	OptionType string
	Quantity   string
	Price      string
}

// dbRun records one applied reconciliation run.
type dbRun struct {
	gorm.Model
	RunID   string `gorm:"uniqueIndex"`
	Updated int
	Created int
	Skipped int
}

// SQLiteStore persists positions in a local sqlite database.
type SQLiteStore struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewSQLiteStore opens (and migrates) a sqlite position store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&dbPosition{}, &dbLeg{}, &dbRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Snapshot() (optfolio.Snapshot, error) {
	return s.snapshot(s.db)
}

func (s *SQLiteStore) snapshot(tx *gorm.DB) (optfolio.Snapshot, error) {
	var rows []dbPosition
	if err := tx.Preload("Legs").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	snap := make(optfolio.Snapshot, len(rows))
	for _, row := range rows {
		p, err := row.position()
		if err != nil {
			return nil, err
		}
		snap[p.Key] = p
	}
	return snap, nil
}

// Apply loads the current set, applies the merge result, and rewrites every
// affected key inside one database transaction.
func (s *SQLiteStore) Apply(runID string, r optfolio.MergeResult) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		snap, err := s.snapshot(tx)
		if err != nil {
			return err
		}
		next := snap.Apply(r)

		affected := make(map[string]bool)
		for _, c := range r.Created {
			affected[c.Key()] = true
		}
		for _, u := range r.Updated {
			affected[u.Key] = true
		}

		for key := range affected {
			p, ok := next[key]
			if !ok {
				continue
			}
			var old dbPosition
			found := tx.Where("key = ?", key).First(&old)
			if found.Error == nil {
				if err := tx.Where("position_id = ?", old.ID).Delete(&dbLeg{}).Error; err != nil {
					return fmt.Errorf("failed to clear legs for %q: %w", key, err)
				}
				if err := tx.Delete(&old).Error; err != nil {
					return fmt.Errorf("failed to clear position %q: %w", key, err)
				}
			}
			row := newDBPosition(p)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to write position %q: %w", key, err)
			}
		}

		run := dbRun{RunID: runID, Updated: len(r.Updated), Created: len(r.Created), Skipped: r.Skipped}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to record run %q: %w", runID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"run":     runID,
		"updated": len(r.Updated),
		"created": len(r.Created),
		"skipped": r.Skipped,
	}).Info("applied reconciliation run")
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*SQLiteStore)(nil)

func newDBPosition(p optfolio.Position) dbPosition {
	row := dbPosition{
		Key:        p.Key,
		Strategy:   string(p.Strategy),
		Ticker:     p.Ticker,
		OptionType: string(p.OptionType),
		Quantity:   p.Quantity.Dec().String(),
		Price:      p.Price.Dec().String(),
	}
	if !p.Expiration.IsZero() {
		row.Expiration = p.Expiration.String()
	}
	if !p.LastTxnDate.IsZero() {
		row.LastTxnDate = p.LastTxnDate.String()
	}
	for _, leg := range p.Legs {
		row.Legs = append(row.Legs, dbLeg{
			Strike:     leg.Strike.Dec().String(),
			OptionType: string(leg.OptionType),
			Quantity:   leg.Quantity.Dec().String(),
			Price:      leg.Price.Dec().String(),
		})
	}
	return row
}

func (row dbPosition) position() (optfolio.Position, error) {
	p := optfolio.Position{
		Key:      row.Key,
		Strategy: optfolio.StrategyType(row.Strategy),
		Ticker:   row.Ticker,
	}
	if row.OptionType != "" {
		p.OptionType = optfolio.OptionType(row.OptionType)
	}
	var err error
	if p.Quantity, err = parseQuantity(row.Quantity); err != nil {
		return p, fmt.Errorf("position %q: %w", row.Key, err)
	}
	if p.Price, err = parseMoney(row.Price); err != nil {
		return p, fmt.Errorf("position %q: %w", row.Key, err)
	}
	if row.Expiration != "" {
		if p.Expiration, err = optfolio.ParseDate(row.Expiration); err != nil {
			return p, fmt.Errorf("position %q: %w", row.Key, err)
		}
	}
	if row.LastTxnDate != "" {
		if p.LastTxnDate, err = optfolio.ParseDate(row.LastTxnDate); err != nil {
			return p, fmt.Errorf("position %q: %w", row.Key, err)
		}
	}
	for _, leg := range row.Legs {
		l := optfolio.Leg{OptionType: optfolio.OptionType(leg.OptionType)}
		if l.Strike, err = parseMoney(leg.Strike); err != nil {
			return p, fmt.Errorf("position %q leg: %w", row.Key, err)
		}
		if l.Quantity, err = parseQuantity(leg.Quantity); err != nil {
			return p, fmt.Errorf("position %q leg: %w", row.Key, err)
		}
		if l.Price, err = parseMoney(leg.Price); err != nil {
			return p, fmt.Errorf("position %q leg: %w", row.Key, err)
		}
		p.Legs = append(p.Legs, l)
	}
	return p, nil
}

func parseMoney(s string) (optfolio.Money, error) {
	if s == "" {
		return optfolio.Money{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return optfolio.Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return optfolio.USD(d), nil
}

func parseQuantity(s string) (optfolio.Quantity, error) {
	if s == "" {
		return optfolio.Quantity{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return optfolio.Quantity{}, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return optfolio.Q(d), nil
}
