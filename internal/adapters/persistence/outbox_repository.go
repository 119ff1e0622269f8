package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborline/omscore/internal/domain/outbox"
)

// GormOutboxRepository implements outbox.Repository. Claiming uses
// SELECT ... FOR UPDATE SKIP LOCKED on postgres; on engines without it the
// claim is a guarded two-step UPDATE keyed by a fresh claim token, which the
// single sqlite write connection makes atomic.
type GormOutboxRepository struct {
	db         *gorm.DB
	skipLocked bool
}

// NewGormOutboxRepository creates the outbox repository.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db, skipLocked: db.Dialector.Name() == "postgres"}
}

// Enqueue inserts a pending row inside the ambient transaction.
func (r *GormOutboxRepository) Enqueue(ctx context.Context, aggregateType, aggregateID, eventType string, payload []byte) error {
	now := time.Now().UTC()
	model := OutboxEventModel{
		ID:            uuid.New().String(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       string(payload),
		Status:        string(outbox.StatusPending),
		AvailableAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return dbErr(dbFrom(ctx, r.db).Create(&model).Error, "outbox.enqueue")
}

// Claim marks up to limit ready rows processing and returns them oldest first.
func (r *GormOutboxRepository) Claim(ctx context.Context, limit int, now time.Time) ([]*outbox.Record, error) {
	if r.skipLocked {
		return r.claimSkipLocked(ctx, limit, now)
	}
	return r.claimWithToken(ctx, limit, now)
}

func (r *GormOutboxRepository) claimSkipLocked(ctx context.Context, limit int, now time.Time) ([]*outbox.Record, error) {
	var models []OutboxEventModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND available_at <= ?", string(outbox.StatusPending), now).
			Order("created_at ASC").
			Limit(limit).
			Find(&models).Error
		if err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		ids := make([]string, len(models))
		for i, m := range models {
			ids[i] = m.ID
		}
		return tx.Model(&OutboxEventModel{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":     string(outbox.StatusProcessing),
				"attempts":   gorm.Expr("attempts + 1"),
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, dbErr(err, "outbox.claim")
	}
	return r.toRecords(models, now), nil
}

func (r *GormOutboxRepository) claimWithToken(ctx context.Context, limit int, now time.Time) ([]*outbox.Record, error) {
	token := uuid.New().String()

	res := r.db.WithContext(ctx).Exec(
		`UPDATE outbox_events
		 SET status = ?, attempts = attempts + 1, claim_token = ?, updated_at = ?
		 WHERE id IN (
		   SELECT id FROM outbox_events
		   WHERE status = ? AND available_at <= ?
		   ORDER BY created_at ASC
		   LIMIT ?
		 )`,
		string(outbox.StatusProcessing), token, now,
		string(outbox.StatusPending), now, limit)
	if res.Error != nil {
		return nil, dbErr(res.Error, "outbox.claim")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var models []OutboxEventModel
	err := r.db.WithContext(ctx).
		Where("claim_token = ?", token).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "outbox.claim")
	}
	return r.toRecords(models, now), nil
}

func (r *GormOutboxRepository) toRecords(models []OutboxEventModel, now time.Time) []*outbox.Record {
	records := make([]*outbox.Record, len(models))
	for i, m := range models {
		records[i] = recordFromModel(&m)
		// The select ran before the claim update; mirror it.
		records[i].Status = outbox.StatusProcessing
		records[i].Attempts = m.Attempts + 1
		records[i].UpdatedAt = now
	}
	return records
}

// MarkDelivered transitions a claimed row to delivered.
func (r *GormOutboxRepository) MarkDelivered(ctx context.Context, id string, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&OutboxEventModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(outbox.StatusDelivered),
			"processed_at":  now,
			"claim_token":   "",
			"error_message": "",
			"updated_at":    now,
		}).Error
	return dbErr(err, "outbox.mark_delivered")
}

// ScheduleRetry returns a claimed row to pending with a future available_at.
func (r *GormOutboxRepository) ScheduleRetry(ctx context.Context, id string, availableAt time.Time, errMessage string, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&OutboxEventModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(outbox.StatusPending),
			"available_at":  availableAt,
			"claim_token":   "",
			"error_message": errMessage,
			"updated_at":    now,
		}).Error
	return dbErr(err, "outbox.schedule_retry")
}

// MarkFailed dead-letters a claimed row.
func (r *GormOutboxRepository) MarkFailed(ctx context.Context, id string, errMessage string, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&OutboxEventModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(outbox.StatusFailed),
			"processed_at":  now,
			"claim_token":   "",
			"error_message": errMessage,
			"updated_at":    now,
		}).Error
	return dbErr(err, "outbox.mark_failed")
}

// ReleaseProcessing returns claimed rows to pending, immediately available.
func (r *GormOutboxRepository) ReleaseProcessing(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&OutboxEventModel{}).
		Where("status = ?", string(outbox.StatusProcessing)).
		Updates(map[string]interface{}{
			"status":       string(outbox.StatusPending),
			"available_at": now,
			"claim_token":  "",
			"updated_at":   now,
		})
	if res.Error != nil {
		return 0, dbErr(res.Error, "outbox.release_processing")
	}
	return res.RowsAffected, nil
}

// FindByID reads one row.
func (r *GormOutboxRepository) FindByID(ctx context.Context, id string) (*outbox.Record, error) {
	var model OutboxEventModel
	err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "outbox.find", "outbox event", id)
	}
	return recordFromModel(&model), nil
}

// CountByStatus reports queue depth per status.
func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[outbox.Status]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&OutboxEventModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, dbErr(err, "outbox.count_by_status")
	}
	counts := make(map[outbox.Status]int64, len(rows))
	for _, r := range rows {
		counts[outbox.Status(r.Status)] = r.Count
	}
	return counts, nil
}

func recordFromModel(m *OutboxEventModel) *outbox.Record {
	return &outbox.Record{
		ID:            m.ID,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		EventType:     m.EventType,
		Payload:       []byte(m.Payload),
		Status:        outbox.Status(m.Status),
		Attempts:      m.Attempts,
		AvailableAt:   m.AvailableAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		ProcessedAt:   m.ProcessedAt,
		ErrorMessage:  m.ErrorMessage,
	}
}
