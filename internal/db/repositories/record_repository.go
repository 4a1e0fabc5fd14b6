package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	gormModels "agrolog/groundstation/internal/models/gorm"
)

// RecordRepository persists fetched metadata and decoded documents so a
// record does not have to be re-scraped and re-decoded on every request.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Get(ctx context.Context, recordID string) (*gormModels.FlightRecord, error) {
	var model gormModels.FlightRecord
	err := r.db.WithContext(ctx).First(&model, "record_id = ?", recordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record lookup failed: %w", err)
	}
	return &model, nil
}

// SaveMetadata upserts the metadata document without touching any decode
// columns already present.
func (r *RecordRepository) SaveMetadata(ctx context.Context, model *gormModels.FlightRecord) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "record_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"serial_number", "drone_type", "pilot_name", "location", "metadata_json", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("record metadata save failed: %w", err)
	}
	return nil
}

// SaveDecode stores the decoded document and diagnostics for a record.
func (r *RecordRepository) SaveDecode(ctx context.Context, recordID, geojson string, accepted, rejected int, hadTelemetry bool) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&gormModels.FlightRecord{}).
		Where("record_id = ?", recordID).
		Updates(map[string]any{
			"geojson":        geojson,
			"accepted_count": accepted,
			"rejected_count": rejected,
			"had_telemetry":  hadTelemetry,
			"decoded_at":     now,
		}).Error
	if err != nil {
		return fmt.Errorf("record decode save failed: %w", err)
	}
	return nil
}

func (r *RecordRepository) List(ctx context.Context, limit, offset int) ([]gormModels.FlightRecord, error) {
	var models []gormModels.FlightRecord
	err := r.db.WithContext(ctx).
		Order("record_id").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("record list failed: %w", err)
	}
	return models, nil
}
