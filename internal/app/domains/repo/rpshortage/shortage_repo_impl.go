package rpshortage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hopely/internal/app/domains/entity/etshortage"
	"hopely/internal/common/entity"
)

var ErrDuplicateShortage = errors.New("shortage id already exists")

// ShortageRepositoryImpl 短缺仓储实现（MySQL）
type ShortageRepositoryImpl struct {
	db *gorm.DB
}

// NewShortageRepository 创建短缺仓储实例
func NewShortageRepository(db *gorm.DB) ShortageRepository {
	return &ShortageRepositoryImpl{db: db}
}

// Create 创建短缺
func (r *ShortageRepositoryImpl) Create(ctx context.Context, shortage *etshortage.Shortage) error {
	err := r.db.WithContext(ctx).Create(ToGormModel(shortage)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateShortage
	}
	return err
}

// GetByID 根据ID查询
func (r *ShortageRepositoryImpl) GetByID(ctx context.Context, shortageID string) (*etshortage.Shortage, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", shortageID))
}

// GetByHospitalAndID 同时匹配医院与ID
func (r *ShortageRepositoryImpl) GetByHospitalAndID(ctx context.Context, hospitalID, shortageID string) (*etshortage.Shortage, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND hospital_id = ?", shortageID, hospitalID))
}

func (r *ShortageRepositoryImpl) first(query *gorm.DB) (*etshortage.Shortage, error) {
	var po entity.Shortage
	if err := query.First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainModel(&po), nil
}

// ListActiveByHospital 医院的 ACTIVE 短缺
func (r *ShortageRepositoryImpl) ListActiveByHospital(ctx context.Context, hospitalID string) ([]*etshortage.Shortage, error) {
	var pos []entity.Shortage
	if err := r.db.WithContext(ctx).
		Where("hospital_id = ? AND status = ?", hospitalID, string(etshortage.StatusActive)).
		Order("updated_at DESC").
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return toDomainModels(pos), nil
}

// ListByHospital 医院的全部短缺
func (r *ShortageRepositoryImpl) ListByHospital(ctx context.Context, hospitalID string) ([]*etshortage.Shortage, error) {
	var pos []entity.Shortage
	if err := r.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Order("created_at ASC").
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return toDomainModels(pos), nil
}

// UpdateStatus 条件更新状态
func (r *ShortageRepositoryImpl) UpdateStatus(ctx context.Context, shortageID string, status etshortage.Status, updatedBy string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Shortage{}).
		Where("id = ? AND status <> ?", shortageID, string(status)).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_by": updatedBy,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func toDomainModels(pos []entity.Shortage) []*etshortage.Shortage {
	shortages := make([]*etshortage.Shortage, 0, len(pos))
	for i := range pos {
		shortages = append(shortages, ToDomainModel(&pos[i]))
	}
	return shortages
}

// ToGormModel 领域对象转换为 GORM 模型
func ToGormModel(s *etshortage.Shortage) *entity.Shortage {
	po := &entity.Shortage{
		ID:                s.ID,
		HospitalID:        s.HospitalID,
		MedicineName:      s.MedicineName,
		GenericName:       s.GenericName,
		QuantityNeeded:    s.QuantityNeeded,
		QuantityAvailable: s.QuantityAvailable,
		Unit:              s.Unit,
		Urgency:           string(s.Urgency),
		Status:            string(s.Status),
		Description:       s.Description,
		ContactEmail:      s.ContactEmail,
		FundingTarget:     s.FundingTarget,
		FundingCurrency:   s.FundingCurrency,
		CostPerUnit:       s.CostPerUnit,
		FundingNote:       s.FundingNote,
		ExpirationDate:    s.ExpirationDate,
		CreatedBy:         s.CreatedBy,
		UpdatedBy:         s.UpdatedBy,
		CreatedAt:         s.CreatedAt.UTC(),
		UpdatedAt:         s.UpdatedAt.UTC(),
	}
	if po.FundingCurrency == "" {
		po.FundingCurrency = etshortage.DefaultCurrency
	}
	return po
}

// ToDomainModel GORM 模型转换为领域对象
// 历史数据缺失的紧急程度、状态、币种在此统一补默认值
func ToDomainModel(po *entity.Shortage) *etshortage.Shortage {
	urgency, err := etshortage.ParseUrgency(po.Urgency)
	if err != nil {
		urgency = etshortage.UrgencyLow
	}
	status, err := etshortage.ParseStatus(po.Status)
	if err != nil {
		status = etshortage.StatusActive
	}
	currency := po.FundingCurrency
	if currency == "" {
		currency = etshortage.DefaultCurrency
	}

	return &etshortage.Shortage{
		ID:                po.ID,
		HospitalID:        po.HospitalID,
		MedicineName:      po.MedicineName,
		GenericName:       po.GenericName,
		QuantityNeeded:    po.QuantityNeeded,
		QuantityAvailable: po.QuantityAvailable,
		Unit:              po.Unit,
		Urgency:           urgency,
		Status:            status,
		Description:       po.Description,
		ContactEmail:      po.ContactEmail,
		FundingTarget:     po.FundingTarget,
		FundingCurrency:   currency,
		CostPerUnit:       po.CostPerUnit,
		FundingNote:       po.FundingNote,
		ExpirationDate:    po.ExpirationDate,
		CreatedBy:         po.CreatedBy,
		UpdatedBy:         po.UpdatedBy,
		CreatedAt:         po.CreatedAt,
		UpdatedAt:         po.UpdatedAt,
	}
}
