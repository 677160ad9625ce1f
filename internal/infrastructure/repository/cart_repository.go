package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/poscore/transaction-api/internal/domain/entity"
	domainRepo "github.com/poscore/transaction-api/internal/domain/repository"
	"github.com/poscore/transaction-api/internal/infrastructure/cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// cartRepository is the cache-backed cart store. The cache tier is the primary
// path; every call is guarded by the circuit breaker and falls back to the
// durable store when the cache is unavailable. An in-progress cart lost from
// both tiers is treated as abandoned; only the completed transaction record
// is guaranteed durable.
type cartRepository struct {
	rdb     *redis.Client
	db      *gorm.DB
	breaker *cache.CircuitBreaker
	ttl     time.Duration
}

// NewCartRepository creates a new dual-tier cart repository
func NewCartRepository(rdb *redis.Client, db *gorm.DB, breaker *cache.CircuitBreaker, ttl time.Duration) domainRepo.CartRepository {
	return &cartRepository{rdb: rdb, db: db, breaker: breaker, ttl: ttl}
}

func cartKey(tenantID, cartID uuid.UUID) string {
	return fmt.Sprintf("cart:%s:%s", tenantID, cartID)
}

func (r *cartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	if r.breaker.CanExecute() {
		err := r.rdb.Set(ctx, cartKey(cart.TenantID, cart.ID), data, r.ttl).Err()
		if err == nil {
			r.breaker.OnSuccess()
			return nil
		}
		r.breaker.OnFailure()
		log.Printf("cart cache write failed, falling back to durable store: %v", err)
	}

	return r.createDurable(ctx, cart, data)
}

func (r *cartRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	tenantID, ok := GetTenantID(ctx)
	if !ok {
		return nil, errors.New("tenant context required")
	}

	if r.breaker.CanExecute() {
		val, err := r.rdb.Get(ctx, cartKey(tenantID, id)).Bytes()
		switch {
		case err == nil:
			r.breaker.OnSuccess()
			var cart entity.Cart
			if err := json.Unmarshal(val, &cart); err != nil {
				return nil, err
			}
			return &cart, nil
		case errors.Is(err, redis.Nil):
			// A miss is not a cache failure; the cart may live in the
			// durable tier from an earlier fallback write.
			r.breaker.OnSuccess()
		default:
			r.breaker.OnFailure()
			log.Printf("cart cache read failed, falling back to durable store: %v", err)
		}
	}

	return r.getDurable(ctx, id)
}

func (r *cartRepository) Update(ctx context.Context, cart *entity.Cart) error {
	if r.breaker.CanExecute() {
		err := r.updateCache(ctx, cart)
		switch {
		case err == nil:
			r.breaker.OnSuccess()
			cart.Version++
			return nil
		case errors.Is(err, domainRepo.ErrVersionConflict):
			r.breaker.OnSuccess()
			return domainRepo.ErrVersionConflict
		case errors.Is(err, redis.Nil):
			// Not cached; the record may only exist durably.
			r.breaker.OnSuccess()
		default:
			r.breaker.OnFailure()
			log.Printf("cart cache update failed, falling back to durable store: %v", err)
		}
	}

	return r.updateDurable(ctx, cart)
}

func (r *cartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, ok := GetTenantID(ctx)
	if !ok {
		return errors.New("tenant context required")
	}

	// Best-effort on both tiers: the cart may live in either one.
	if r.breaker.CanExecute() {
		if err := r.rdb.Del(ctx, cartKey(tenantID, id)).Err(); err != nil {
			r.breaker.OnFailure()
			log.Printf("cart cache delete failed: %v", err)
		} else {
			r.breaker.OnSuccess()
		}
	}

	return r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Delete(&entity.CartRecord{}, "id = ?", id).Error
}

// updateCache performs a replace-if-unchanged write on the cache entry using
// an optimistic WATCH transaction keyed on the stored version
func (r *cartRepository) updateCache(ctx context.Context, cart *entity.Cart) error {
	key := cartKey(cart.TenantID, cart.ID)

	next := *cart
	next.Version = cart.Version + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}

	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}

		var stored entity.Cart
		if err := json.Unmarshal(val, &stored); err != nil {
			return err
		}
		if stored.Version != cart.Version {
			return domainRepo.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	err = r.rdb.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return domainRepo.ErrVersionConflict
	}
	return err
}

func (r *cartRepository) createDurable(ctx context.Context, cart *entity.Cart, data []byte) error {
	record := &entity.CartRecord{
		ID:       cart.ID,
		TenantID: cart.TenantID,
		Snapshot: datatypes.JSON(data),
		Version:  cart.Version,
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *cartRepository) getDurable(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	var record entity.CartRecord
	err := r.db.WithContext(ctx).Scopes(TenantScope(ctx)).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart entity.Cart
	if err := json.Unmarshal(record.Snapshot, &cart); err != nil {
		return nil, err
	}
	cart.Version = record.Version
	return &cart, nil
}

func (r *cartRepository) updateDurable(ctx context.Context, cart *entity.Cart) error {
	next := *cart
	next.Version = cart.Version + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&entity.CartRecord{}).
		Where("id = ? AND tenant_id = ? AND version = ?", cart.ID, cart.TenantID, cart.Version).
		Updates(map[string]interface{}{
			"snapshot": datatypes.JSON(data),
			"version":  cart.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or another writer bumped the version.
		var count int64
		if err := r.db.WithContext(ctx).Model(&entity.CartRecord{}).
			Where("id = ? AND tenant_id = ?", cart.ID, cart.TenantID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			// First durable write for a cart that was living in the cache
			// until the fallback kicked in.
			record := &entity.CartRecord{
				ID:       cart.ID,
				TenantID: cart.TenantID,
				Snapshot: datatypes.JSON(data),
				Version:  cart.Version + 1,
			}
			if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
				return err
			}
			cart.Version++
			return nil
		}
		return domainRepo.ErrVersionConflict
	}

	cart.Version++
	return nil
}
