package repository

import (
	"context"

	"edushare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	var res models.Resource
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpsertFeedback stores one rating per (resource, user) and recomputes the resource's
// average and count from the feedback table in the same transaction.
func (r *ResourceRepository) UpsertFeedback(ctx context.Context, fb *models.ResourceFeedback) (*models.Resource, error) {
	var out models.Resource
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resource_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).Create(fb).Error
		if err != nil {
			return err
		}
		var agg struct {
			Avg   float64
			Count int
		}
		err = tx.Model(&models.ResourceFeedback{}).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
			Where("resource_id = ?", fb.ResourceID).
			Scan(&agg).Error
		if err != nil {
			return err
		}
		res := tx.Model(&models.Resource{}).Where("id = ?", fb.ResourceID).
			Updates(map[string]interface{}{"rating_average": agg.Avg, "rating_count": agg.Count})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", fb.ResourceID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
