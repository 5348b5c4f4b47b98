package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Shida18719/trading-algo-assessment/internal/event"
)

// EventRecord is one persisted sequencer event. Payload is the JSON
// encoding of the concrete event; Type selects the decoder on replay.
type EventRecord struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Seq       uint64 `gorm:"uniqueIndex"`
	Type      uint16
	Payload   []byte
	CreatedAt time.Time
}

// EventStore is the write-ahead event log backed by SQLite (pure Go driver).
// The sequencer persists every inbound event before applying it, so a
// crash can be replayed deterministically from the log.
type EventStore struct {
	db *gorm.DB
}

// NewEventStore opens (or creates) the event log at the given path.
func NewEventStore(path string) (*EventStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate event log: %w", err)
	}

	return &EventStore{db: db}, nil
}

// SaveEvent appends an event to the log. Must succeed before the event
// is applied; the sequencer halts on persistence failure.
func (s *EventStore) SaveEvent(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event %d: %w", ev.GetSeq(), err)
	}

	rec := EventRecord{
		Seq:     ev.GetSeq(),
		Type:    uint16(ev.GetType()),
		Payload: payload,
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// LoadAll reads the full log in sequence order and decodes each record
// into its concrete event type. Unknown record types are an error: a log
// written by a newer build must not be silently half-replayed.
func (s *EventStore) LoadAll(ctx context.Context) ([]event.Event, error) {
	var records []EventRecord
	if err := s.db.WithContext(ctx).Order("seq asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query event log: %w", err)
	}

	events := make([]event.Event, 0, len(records))
	for _, rec := range records {
		ev, err := decodeRecord(&rec)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeRecord(rec *EventRecord) (event.Event, error) {
	switch event.Type(rec.Type) {
	case event.EvBookUpdate:
		var ev event.BookUpdateEvent
		if err := json.Unmarshal(rec.Payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode book update %d: %w", rec.Seq, err)
		}
		return &ev, nil
	case event.EvOrderFill:
		var ev event.OrderFillEvent
		if err := json.Unmarshal(rec.Payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode order fill %d: %w", rec.Seq, err)
		}
		return &ev, nil
	default:
		return nil, fmt.Errorf("unknown event type %d at seq %d", rec.Type, rec.Seq)
	}
}
