// Package db provides database connection, migration and the timeline archive.
package db

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"strings"

	"voting-monitor/internal/config"
	"voting-monitor/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// archiveBatchSize is the insert batch size for timeline rows.
const archiveBatchSize = 500

// Open opens a database connection using the provided configuration.
// It returns a nil DB when no database is configured.
func Open(cfg config.Config) (*gorm.DB, error) {
	// Configure GORM logger (Silent to avoid cluttering output; only errors will be logged)
	newLogger := logger.New(
		stdlog.New(os.Stdout, "", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	if cfg.DBDialect == "" || cfg.DBDsn == "" {
		return nil, nil
	}

	switch cfg.DBDialect {
	case config.DatabaseSchemePostgres:
		return gorm.Open(postgres.Open(cfg.DBDsn), &gorm.Config{Logger: newLogger})
	default:
		return nil, fmt.Errorf("unsupported DB_DIALECT: %s", cfg.DBDialect)
	}
}

// AutoMigrate runs database migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&models.EventRecord{})
}

// Archive stores every timeline record seen on a network. Records are never updated: a record
// already archived by an earlier pass is skipped by the unique index.
type Archive struct {
	db *gorm.DB
}

func NewArchive(db *gorm.DB) *Archive {
	return &Archive{db: db}
}

// SaveTimeline inserts the records not yet archived for networkID.
func (a *Archive) SaveTimeline(ctx context.Context, networkID uint64, records []models.TimelineRecord) error {
	if a == nil || a.db == nil || len(records) == 0 {
		return nil
	}
	rows := ToRecords(networkID, records)
	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, archiveBatchSize).Error
	if err != nil {
		return fmt.Errorf("archive %d timeline records: %w", len(rows), err)
	}
	return nil
}

// Recent returns the latest archived records of networkID, newest block first.
func (a *Archive) Recent(ctx context.Context, networkID uint64, limit int) ([]models.EventRecord, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	var rows []models.EventRecord
	err := a.db.WithContext(ctx).
		Where("network_id = ?", networkID).
		Order("block_number DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load archived records: %w", err)
	}
	return rows, nil
}

// ToRecords maps timeline records to archive rows.
func ToRecords(networkID uint64, records []models.TimelineRecord) []models.EventRecord {
	rows := make([]models.EventRecord, 0, len(records))
	for _, r := range records {
		row := models.EventRecord{
			NetworkID:   networkID,
			Kind:        string(r.Kind),
			BlockNumber: r.BlockNumber,
			Payload:     payload(r),
		}
		switch r.Kind {
		case models.KindVoterRegistered:
			row.Address = r.Address.Hex()
		case models.KindProposalRegistered:
			row.ProposalID = r.ProposalID
		case models.KindPhaseChanged:
			row.PreviousPhase = int8(r.PreviousPhase)
			row.NewPhase = int8(r.NewPhase)
		case models.KindVoteCast:
			row.Address = r.Address.Hex()
			row.ProposalID = r.ProposalID
		}
		rows = append(rows, row)
	}
	return rows
}

// payload is the kind-specific part of the unique key.
func payload(r models.TimelineRecord) string {
	switch r.Kind {
	case models.KindVoterRegistered:
		return strings.ToLower(r.Address.Hex())
	case models.KindProposalRegistered:
		return fmt.Sprintf("%d", r.ProposalID)
	case models.KindPhaseChanged:
		return fmt.Sprintf("%d>%d", r.PreviousPhase, r.NewPhase)
	case models.KindVoteCast:
		return fmt.Sprintf("%s:%d", strings.ToLower(r.Address.Hex()), r.ProposalID)
	default:
		return ""
	}
}
