package repositories

import (
	"context"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/core/domain"

	"gorm.io/gorm"
)

// farmerRepository implements FarmerRepository interface
type farmerRepository struct {
	db *gorm.DB
}

// NewFarmerRepository creates a new farmer repository
func NewFarmerRepository(db *gorm.DB) FarmerRepository {
	return &farmerRepository{db: db}
}

// Create creates a new farmer
func (r *farmerRepository) Create(ctx context.Context, farmer *models.Farmer) error {
	return r.db.WithContext(ctx).Create(farmer).Error
}

// CreateBatch inserts a batch of farmers in one statement. Uniqueness of
// phone and national_id is enforced by the database constraints only.
func (r *farmerRepository) CreateBatch(ctx context.Context, farmers []*models.Farmer) error {
	if len(farmers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(farmers).Error
}

// GetByID gets a farmer by ID
func (r *farmerRepository) GetByID(ctx context.Context, id uint) (*models.Farmer, error) {
	var farmer models.Farmer
	err := r.db.WithContext(ctx).Preload("Agent").First(&farmer, id).Error
	if err != nil {
		return nil, err
	}
	return &farmer, nil
}

// GetByPhone gets a farmer by phone number
func (r *farmerRepository) GetByPhone(ctx context.Context, phone string) (*models.Farmer, error) {
	var farmer models.Farmer
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&farmer).Error
	if err != nil {
		return nil, err
	}
	return &farmer, nil
}

// List lists farmers with pagination
func (r *farmerRepository) List(ctx context.Context, offset, limit int) ([]*models.Farmer, int64, error) {
	var farmers []*models.Farmer
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Farmer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&farmers).Error

	return farmers, total, err
}

// ListUnlinked lists farmers not yet claimed by any agent
func (r *farmerRepository) ListUnlinked(ctx context.Context, offset, limit int) ([]*models.Farmer, int64, error) {
	var farmers []*models.Farmer
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Farmer{}).Where("agent_id IS NULL")
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("agent_id IS NULL").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&farmers).Error

	return farmers, total, err
}

// ListByAgent lists farmers linked to an agent
func (r *farmerRepository) ListByAgent(ctx context.Context, agentID uint, offset, limit int) ([]*models.Farmer, int64, error) {
	var farmers []*models.Farmer
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Farmer{}).Where("agent_id = ?", agentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&farmers).Error

	return farmers, total, err
}

// CountByAgent counts farmers linked to an agent
func (r *farmerRepository) CountByAgent(ctx context.Context, agentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Farmer{}).
		Where("agent_id = ?", agentID).
		Count(&count).Error
	return count, err
}

// Link claims an unlinked farmer for an agent. Guarded on agent_id IS NULL:
// a second concurrent claimer affects zero rows and gets the linked error.
func (r *farmerRepository) Link(ctx context.Context, farmerID, agentID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Farmer{}).
		Where("id = ?", farmerID).
		Where("agent_id IS NULL").
		Update("agent_id", agentID)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Distinguish "already linked" from "no such farmer"
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Farmer{}).Where("id = ?", farmerID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrFarmerNotFound
		}
		return domain.ErrFarmerAlreadyLinked
	}

	return nil
}
