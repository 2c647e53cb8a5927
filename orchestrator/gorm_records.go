package orchestrator

import (
	"context"
	"math"
	"sort"

	"github.com/disasterlabs/beacon/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const earthRadiusMeters = 6371000

// GormRecords is the gorm-backed RecordStore over the primary entity
// tables.
type GormRecords struct {
	db *gorm.DB
}

func NewGormRecords(db *gorm.DB) *GormRecords {
	return &GormRecords{db: db}
}

func (r *GormRecords) GetDisaster(ctx context.Context, id string) (*model.Disaster, error) {
	if id == "" {
		return nil, nil
	}
	var disaster model.Disaster
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&disaster)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "get disaster")
	}
	return &disaster, nil
}

func (r *GormRecords) UpdateReportVerification(ctx context.Context, reportID string, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Report{}).
		Where("id = ?", reportID).
		Update("verification_status", status)
	return errors.Wrap(res.Error, "update report verification")
}

// NearbyResources filters the disaster's resources by haversine distance
// and returns them nearest first with DistanceMeters populated.
func (r *GormRecords) NearbyResources(ctx context.Context, disasterID string, lat float64, lng float64, radiusMeters float64) ([]model.Resource, error) {
	var candidates []model.Resource
	res := r.db.WithContext(ctx).
		Where("disaster_id = ?", disasterID).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Find(&candidates)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "list resources")
	}

	nearby := []model.Resource{}
	for _, resource := range candidates {
		distance := haversineMeters(lat, lng, *resource.Latitude, *resource.Longitude)
		if distance <= radiusMeters {
			resource.DistanceMeters = distance
			nearby = append(nearby, resource)
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})
	return nearby, nil
}

func haversineMeters(lat1 float64, lng1 float64, lat2 float64, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
