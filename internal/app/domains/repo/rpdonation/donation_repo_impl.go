package rpdonation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/entity/etprimitive"
	"hopely/internal/app/domains/entity/etshortage"
	"hopely/internal/app/domains/repo/rpshortage"
	"hopely/internal/common/entity"
)

// DonationRepositoryImpl 捐赠仓储实现（MySQL）
type DonationRepositoryImpl struct {
	db *gorm.DB
}

// NewDonationRepository 创建捐赠仓储实例
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &DonationRepositoryImpl{db: db}
}

// Create 创建记录
func (r *DonationRepositoryImpl) Create(ctx context.Context, donation *etdonation.Donation) error {
	return create(r.db.WithContext(ctx), donation)
}

func create(db *gorm.DB, donation *etdonation.Donation) error {
	err := db.Create(toGormModel(donation)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateOrder
	}
	return err
}

// CreateWithinShortageBudget 锁定短缺行后完成 读取-决策-插入
// MySQL 下为 SELECT ... FOR UPDATE，跨实例的并发认捐按短缺串行
func (r *DonationRepositoryImpl) CreateWithinShortageBudget(ctx context.Context, shortageID string, build BudgetFunc) (*etdonation.Donation, error) {
	var created *etdonation.Donation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shortage *etshortage.Shortage
		var po entity.Shortage
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", shortageID).
			First(&po).Error
		switch {
		case err == nil:
			shortage = rpshortage.ToDomainModel(&po)
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("lock shortage failed: %w", err)
		}

		committed := decimal.Zero
		if shortage != nil {
			if committed, err = sumByShortage(tx, shortageID); err != nil {
				return err
			}
		}

		donation, err := build(shortage, committed)
		if err != nil {
			return err
		}
		if donation == nil {
			return nil
		}

		if err := create(tx, donation); err != nil {
			return err
		}
		created = donation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByOrderID 根据订单号查询
func (r *DonationRepositoryImpl) GetByOrderID(ctx context.Context, orderID string) (*etdonation.Donation, error) {
	var po entity.Donation
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainModel(&po), nil
}

func applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.HospitalID != "" {
		query = query.Where("hospital_id = ?", filter.HospitalID)
	}
	if filter.ShortageID != "" {
		query = query.Where("shortage_id = ?", filter.ShortageID)
	}
	return query
}

// List 分页查询
func (r *DonationRepositoryImpl) List(ctx context.Context, filter Filter, page etprimitive.Pagination) ([]*etdonation.Donation, int64, error) {
	var total int64
	var pos []entity.Donation

	if err := applyFilter(r.db.WithContext(ctx).Model(&entity.Donation{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := applyFilter(r.db.WithContext(ctx).Model(&entity.Donation{}), filter).
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	return toDomainModels(pos), total, nil
}

// Totals 按状态汇总
func (r *DonationRepositoryImpl) Totals(ctx context.Context, filter Filter) (*Totals, error) {
	type row struct {
		Status string
		Cnt    int64
	}
	var rows []row
	if err := applyFilter(r.db.WithContext(ctx).Model(&entity.Donation{}), filter).
		Select("status, COUNT(*) AS cnt").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := &Totals{
		Counts:          make(map[etdonation.Status]int64, len(etdonation.AllStatuses)),
		ConfirmedAmount: decimal.Zero,
	}
	for _, st := range etdonation.AllStatuses {
		totals.Counts[st] = 0
	}
	for _, rw := range rows {
		totals.Counts[etdonation.Status(rw.Status)] += rw.Cnt
		totals.TotalDonations += rw.Cnt
	}

	confirmedFilter := filter
	confirmedFilter.Status = etdonation.StatusCompleted
	if filter.Status != "" && filter.Status != etdonation.StatusCompleted {
		return totals, nil
	}
	err := applyFilter(r.db.WithContext(ctx).Model(&entity.Donation{}), confirmedFilter).
		Select("COALESCE(SUM(amount), 0)").
		Row().
		Scan(&totals.ConfirmedAmount)
	if err != nil {
		return nil, err
	}

	return totals, nil
}

// ListByShortage 短缺下全部捐赠
func (r *DonationRepositoryImpl) ListByShortage(ctx context.Context, shortageID string) ([]*etdonation.Donation, error) {
	var pos []entity.Donation
	if err := r.db.WithContext(ctx).
		Where("shortage_id = ?", shortageID).
		Order("created_at DESC").Order("id DESC").
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return toDomainModels(pos), nil
}

// SumByShortage 短缺下全部状态的累计金额
func (r *DonationRepositoryImpl) SumByShortage(ctx context.Context, shortageID string) (decimal.Decimal, error) {
	return sumByShortage(r.db.WithContext(ctx), shortageID)
}

func sumByShortage(db *gorm.DB, shortageID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := db.Model(&entity.Donation{}).
		Where("shortage_id = ?", shortageID).
		Select("COALESCE(SUM(amount), 0)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum donations failed: %w", err)
	}
	return sum, nil
}

// TransitionToCompleted 两分支状态转换
//  1. 存在未完成记录：条件更新 WHERE status <> 'completed'，原地置为 completed
//  2. 已完成：不修改
//  3. 无记录：补录一条已完成记录；唯一键冲突说明并发写入了同一订单，回到分支 1/2
func (r *DonationRepositoryImpl) TransitionToCompleted(ctx context.Context, orderID string, payment etdonation.PaymentFields, newID func() int64) (*TransitionResult, error) {
	payment = payment.WithDefaults()

	for attempt := 0; attempt < 2; attempt++ {
		existing, err := r.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}

		if existing != nil {
			if existing.IsCompleted() {
				return &TransitionResult{Outcome: TransitionAlreadyCompleted, Donation: existing}, nil
			}

			now := time.Now().UTC()
			updates := map[string]interface{}{
				"status":         string(etdonation.StatusCompleted),
				"payment_id":     payment.PaymentID,
				"payment_method": payment.PaymentMethod,
				"completed_at":   now,
				"updated_at":     now,
			}
			if payment.GatewayAmount != nil {
				updates["gateway_amount"] = *payment.GatewayAmount
			}
			if payment.GatewayCurrency != "" {
				updates["gateway_currency"] = payment.GatewayCurrency
			}
			if existing.MerchantID == "" && payment.MerchantID != "" {
				updates["merchant_id"] = payment.MerchantID
			}

			result := r.db.WithContext(ctx).
				Model(&entity.Donation{}).
				Where("order_id = ? AND status <> ?", orderID, string(etdonation.StatusCompleted)).
				Updates(updates)
			if result.Error != nil {
				return nil, result.Error
			}

			current, err := r.GetByOrderID(ctx, orderID)
			if err != nil {
				return nil, err
			}
			if result.RowsAffected == 0 {
				// 并发的另一条通知先完成了
				return &TransitionResult{Outcome: TransitionAlreadyCompleted, Donation: current}, nil
			}
			return &TransitionResult{
				Outcome:        TransitionUpdated,
				PreviousStatus: existing.Status,
				Donation:       current,
			}, nil
		}

		synthetic, err := etdonation.NewSyntheticCompleted(newID(), orderID, payment)
		if err != nil {
			return nil, err
		}
		err = r.Create(ctx, synthetic)
		if errors.Is(err, ErrDuplicateOrder) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &TransitionResult{Outcome: TransitionFallbackInserted, Donation: synthetic}, nil
	}

	return nil, fmt.Errorf("transition order %s: concurrent writers did not converge", orderID)
}

// ListPending 全部 pending 记录
func (r *DonationRepositoryImpl) ListPending(ctx context.Context) ([]*etdonation.Donation, error) {
	var pos []entity.Donation
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(etdonation.StatusPending)).
		Order("created_at DESC").Order("id DESC").
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return toDomainModels(pos), nil
}

// CompletePending 人工完成 pending 记录
func (r *DonationRepositoryImpl) CompletePending(ctx context.Context, orderID string, method string) ([]string, error) {
	var completed []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&entity.Donation{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", string(etdonation.StatusPending))
		if orderID != "" {
			query = query.Where("order_id = ?", orderID)
		}

		var orderIDs []string
		if err := query.Pluck("order_id", &orderIDs).Error; err != nil {
			return err
		}
		if len(orderIDs) == 0 {
			return nil
		}

		now := time.Now().UTC()
		if err := tx.Model(&entity.Donation{}).
			Where("order_id IN ? AND status = ?", orderIDs, string(etdonation.StatusPending)).
			Updates(map[string]interface{}{
				"status":         string(etdonation.StatusCompleted),
				"payment_method": method,
				"completed_at":   now,
				"updated_at":     now,
			}).Error; err != nil {
			return err
		}

		completed = orderIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func toDomainModels(pos []entity.Donation) []*etdonation.Donation {
	donations := make([]*etdonation.Donation, 0, len(pos))
	for i := range pos {
		donations = append(donations, toDomainModel(&pos[i]))
	}
	return donations
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// toGormModel 领域对象转换为 GORM 模型
func toGormModel(d *etdonation.Donation) *entity.Donation {
	po := &entity.Donation{
		ID:              d.ID,
		OrderID:         d.OrderID,
		ShortageID:      optional(d.ShortageID),
		HospitalID:      optional(d.HospitalID),
		DonorName:       d.Donor.Name,
		DonorEmail:      d.Donor.Email,
		DonorPhone:      d.Donor.Phone,
		DonorAddress:    d.Donor.Address,
		DonorCity:       d.Donor.City,
		MedicineName:    d.MedicineName,
		HospitalName:    d.HospitalName,
		Note:            d.Note,
		Amount:          d.Amount,
		Currency:        d.Currency,
		Status:          string(d.Status),
		MerchantID:      d.MerchantID,
		PaymentID:       optional(d.PaymentID),
		PaymentMethod:   optional(d.PaymentMethod),
		GatewayAmount:   d.GatewayAmount,
		GatewayCurrency: optional(d.GatewayCurrency),
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
	if d.CompletedAt != nil {
		completedAt := d.CompletedAt.UTC()
		po.CompletedAt = &completedAt
	}
	return po
}

// toDomainModel GORM 模型转换为领域对象
func toDomainModel(po *entity.Donation) *etdonation.Donation {
	currency := po.Currency
	if currency == "" {
		currency = etdonation.DefaultCurrency
	}
	return &etdonation.Donation{
		ID:         po.ID,
		OrderID:    po.OrderID,
		ShortageID: deref(po.ShortageID),
		HospitalID: deref(po.HospitalID),
		Donor: etdonation.Donor{
			Name:    po.DonorName,
			Email:   po.DonorEmail,
			Phone:   po.DonorPhone,
			Address: po.DonorAddress,
			City:    po.DonorCity,
		},
		MedicineName:    po.MedicineName,
		HospitalName:    po.HospitalName,
		Note:            po.Note,
		Amount:          po.Amount,
		Currency:        currency,
		Status:          etdonation.Status(po.Status),
		MerchantID:      po.MerchantID,
		PaymentID:       deref(po.PaymentID),
		PaymentMethod:   deref(po.PaymentMethod),
		GatewayAmount:   po.GatewayAmount,
		GatewayCurrency: deref(po.GatewayCurrency),
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
		CompletedAt:     po.CompletedAt,
	}
}
