package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/citypath/service-routing/internal/domain/errs"
	"github.com/citypath/service-routing/internal/domain/geo"
	routeDomain "github.com/citypath/service-routing/internal/domain/route"
)

// RouteRecordModel is the GORM model for the route_records table.
type RouteRecordModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OriginLat      float64   `gorm:"not null"`
	OriginLon      float64   `gorm:"not null"`
	DestinationLat float64   `gorm:"not null"`
	DestinationLon float64   `gorm:"not null"`
	Mode           string    `gorm:"not null;size:20"`
	DistanceM      float64   `gorm:"not null"`
	DurationS      float64   `gorm:"not null"`
	NodeCount      int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (RouteRecordModel) TableName() string {
	return "route_records"
}

// GormRouteHistoryRepository is the GORM-based implementation of
// route.HistoryRepository.
type GormRouteHistoryRepository struct {
	db *gorm.DB
}

// NewGormRouteHistoryRepository creates a new GormRouteHistoryRepository.
func NewGormRouteHistoryRepository(db *gorm.DB) *GormRouteHistoryRepository {
	return &GormRouteHistoryRepository{db: db}
}

// Save persists a new route record.
func (r *GormRouteHistoryRepository) Save(ctx context.Context, rec *routeDomain.Record) error {
	model := toRecordModel(rec)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save route record: %w", err)
	}
	return nil
}

// FindByID retrieves a route record by its unique identifier.
func (r *GormRouteHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*routeDomain.Record, error) {
	var model RouteRecordModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("route", id.String())
		}
		return nil, fmt.Errorf("failed to find route record: %w", err)
	}
	return toDomainRecord(&model), nil
}

// ListAll retrieves route records with pagination, newest first.
func (r *GormRouteHistoryRepository) ListAll(ctx context.Context, page, limit int) ([]*routeDomain.Record, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RouteRecordModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count route records: %w", err)
	}

	var models []RouteRecordModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list route records: %w", err)
	}

	records := make([]*routeDomain.Record, len(models))
	for i, m := range models {
		records[i] = toDomainRecord(&m)
	}
	return records, total, nil
}

// --- Conversion helpers ---

func toRecordModel(rec *routeDomain.Record) *RouteRecordModel {
	return &RouteRecordModel{
		ID:             rec.ID,
		OriginLat:      rec.Origin.Lat,
		OriginLon:      rec.Origin.Lon,
		DestinationLat: rec.Destination.Lat,
		DestinationLon: rec.Destination.Lon,
		Mode:           rec.Mode,
		DistanceM:      rec.DistanceM,
		DurationS:      rec.DurationS,
		NodeCount:      rec.NodeCount,
		CreatedAt:      rec.CreatedAt,
	}
}

func toDomainRecord(m *RouteRecordModel) *routeDomain.Record {
	return &routeDomain.Record{
		ID:          m.ID,
		Origin:      geo.Coordinate{Lat: m.OriginLat, Lon: m.OriginLon},
		Destination: geo.Coordinate{Lat: m.DestinationLat, Lon: m.DestinationLon},
		Mode:        m.Mode,
		DistanceM:   m.DistanceM,
		DurationS:   m.DurationS,
		NodeCount:   m.NodeCount,
		CreatedAt:   m.CreatedAt,
	}
}
