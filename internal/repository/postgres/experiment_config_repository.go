package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fashionPulse/domain"
)

type ExperimentConfigRepository struct {
	DB *gorm.DB
}

func NewExperimentConfigRepository(db *gorm.DB) *ExperimentConfigRepository {
	return &ExperimentConfigRepository{DB: db}
}

type experimentVariantRow struct {
	Version      int     `gorm:"column:version;primaryKey"`
	Name         string  `gorm:"column:name;primaryKey"`
	Alpha        float64 `gorm:"column:alpha"`
	Beta         float64 `gorm:"column:beta"`
	Gamma        float64 `gorm:"column:gamma"`
	TrafficShare float64 `gorm:"column:traffic_share"`
}

func (experimentVariantRow) TableName() string {
	return "experiment_variants"
}

// GetActiveSet loads the highest stored version. Sets are immutable once
// written; activating a new configuration always writes a higher version.
func (r *ExperimentConfigRepository) GetActiveSet(ctx context.Context) (domain.VariantSet, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.VariantSet{}, false, fmt.Errorf("context error: %w", err)
	}

	var version *int
	err := r.DB.WithContext(ctx).Model(&experimentVariantRow{}).
		Select("MAX(version)").Scan(&version).Error
	if err != nil {
		return domain.VariantSet{}, false, fmt.Errorf("failed to query experiment versions: %w", err)
	}
	if version == nil {
		return domain.VariantSet{}, false, nil
	}

	var rows []experimentVariantRow
	err = r.DB.WithContext(ctx).
		Where("version = ?", *version).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return domain.VariantSet{}, false, fmt.Errorf("failed to load experiment variants: %w", err)
	}
	if len(rows) == 0 {
		return domain.VariantSet{}, false, nil
	}

	set := domain.VariantSet{Version: *version}
	for _, row := range rows {
		set.Variants = append(set.Variants, domain.VariantConfig{
			Name:         row.Name,
			Alpha:        row.Alpha,
			Beta:         row.Beta,
			Gamma:        row.Gamma,
			TrafficShare: row.TrafficShare,
		})
	}

	return set, true, nil
}

func (r *ExperimentConfigRepository) SaveSet(ctx context.Context, set domain.VariantSet) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	rows := make([]experimentVariantRow, len(set.Variants))
	for i, v := range set.Variants {
		rows[i] = experimentVariantRow{
			Version:      set.Version,
			Name:         v.Name,
			Alpha:        v.Alpha,
			Beta:         v.Beta,
			Gamma:        v.Gamma,
			TrafficShare: v.TrafficShare,
		}
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "version"}, {Name: "name"}},
			UpdateAll: true,
		}).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save experiment variants: %w", err)
		}
		return nil
	})
}
