package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/CodOfTrade/Sys-Ticket-sub003/models"
)

const pricingCacheTTL = 5 * time.Minute

// PricingResolver selects the applicable rate record from the pricing
// catalog. The catalog is read-only to this engine, so resolved rows are
// cached in Redis when a client is configured; a nil Cache skips caching.
type PricingResolver struct {
	DB    *gorm.DB
	Cache *redis.Client
}

// Resolve returns the modality rate row for the given service desk, delivery
// modality and coverage basis. When coverage is contract, contractID is
// mandatory and, if the contract pins a pricing configuration, only that
// configuration is considered. A missing modality row is ErrNotFound, never
// a silent fallback.
func (r *PricingResolver) Resolve(ctx context.Context, serviceDeskID uint, modality models.ServiceModality, coverage models.CoverageType, contractID *uint) (*models.PricingModalityConfig, error) {
	if !modality.Valid() {
		return nil, validationf("invalid service modality %q", modality)
	}
	if !coverage.Valid() {
		return nil, validationf("invalid coverage type %q", coverage)
	}

	var pinnedConfig *uint
	if coverage == models.CoverageContract {
		if contractID == nil {
			return nil, validationf("contract_id is required when coverage_type is contract")
		}
		var contract models.Contract
		if err := r.DB.WithContext(ctx).First(&contract, *contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("contract %d: %w", *contractID, ErrNotFound)
			}
			return nil, err
		}
		pinnedConfig = contract.PricingConfigID
	}

	cacheKey := r.cacheKey(serviceDeskID, modality, pinnedConfig)
	if row := r.cacheGet(ctx, cacheKey); row != nil {
		return row, nil
	}

	query := r.DB.WithContext(ctx).
		Joins("JOIN pricing_configs ON pricing_configs.id = pricing_modality_configs.pricing_config_id").
		Where("pricing_configs.service_desk_id = ?", serviceDeskID).
		Where("pricing_configs.active = ?", true).
		Where("pricing_configs.deleted_at IS NULL").
		Where("pricing_modality_configs.modality = ?", modality)
	if pinnedConfig != nil {
		query = query.Where("pricing_modality_configs.pricing_config_id = ?", *pinnedConfig)
	}

	var row models.PricingModalityConfig
	err := query.Order("pricing_modality_configs.pricing_config_id").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no %s rate configured for service desk %d: %w", modality, serviceDeskID, ErrNotFound)
		}
		return nil, err
	}

	r.cacheSet(ctx, cacheKey, &row)
	return &row, nil
}

func (r *PricingResolver) cacheKey(serviceDeskID uint, modality models.ServiceModality, pinnedConfig *uint) string {
	if pinnedConfig != nil {
		return fmt.Sprintf("pricing:desk:%d:modality:%s:config:%d", serviceDeskID, modality, *pinnedConfig)
	}
	return fmt.Sprintf("pricing:desk:%d:modality:%s", serviceDeskID, modality)
}

func (r *PricingResolver) cacheGet(ctx context.Context, key string) *models.PricingModalityConfig {
	if r.Cache == nil {
		return nil
	}
	payload, err := r.Cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var row models.PricingModalityConfig
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil
	}
	return &row
}

func (r *PricingResolver) cacheSet(ctx context.Context, key string, row *models.PricingModalityConfig) {
	if r.Cache == nil {
		return
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, payload, pricingCacheTTL).Err(); err != nil {
		log.Printf("pricing cache set failed for %s: %v", key, err)
	}
}
