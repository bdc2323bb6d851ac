package svshortage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hopely/internal/app/domains/entity/etshortage"
	"hopely/internal/app/domains/modules/mdshortage"
	"hopely/internal/app/domains/repo/rpshortage"
	"hopely/internal/app/pkg/errorx"
	"hopely/internal/app/pkg/logger"
)

// ShortageService 短缺台账服务，负责医院侧的业务编排
type ShortageService struct {
	shortageModule *mdshortage.ShortageModule
	logger         logger.Logger
}

// NewShortageService 创建短缺服务实例
func NewShortageService(shortageModule *mdshortage.ShortageModule, logger logger.Logger) *ShortageService {
	return &ShortageService{
		shortageModule: shortageModule,
		logger:         logger,
	}
}

// CreateShortage 创建短缺
// 1. 校验字段并生成 uuid
// 2. 状态置为 ACTIVE 并落库
func (s *ShortageService) CreateShortage(ctx context.Context, hospitalID string, spec etshortage.Spec) (*etshortage.Shortage, error) {
	shortage, err := etshortage.NewShortage(uuid.New().String(), hospitalID, spec)
	if err != nil {
		return nil, toValidation(err)
	}

	if err := s.shortageModule.CreateShortage(ctx, shortage); err != nil {
		return nil, errorx.Storage("save shortage failed", err)
	}

	s.logger.InfoContext(ctx, "Shortage created",
		"shortage_id", shortage.ID,
		"hospital_id", hospitalID,
		"urgency", shortage.Urgency,
	)
	return shortage, nil
}

// ListActiveShortages 医院当前 ACTIVE 的短缺，按更新时间倒序
func (s *ShortageService) ListActiveShortages(ctx context.Context, hospitalID string) ([]*etshortage.Shortage, error) {
	shortages, err := s.shortageModule.ListActive(ctx, hospitalID)
	if err != nil {
		return nil, errorx.Storage("list shortages failed", err)
	}
	return shortages, nil
}

// CancelShortage 软删除（幂等）
// 返回 true 表示此前已是 CANCELLED
func (s *ShortageService) CancelShortage(ctx context.Context, hospitalID, shortageID, by string) (bool, error) {
	shortage, err := s.shortageModule.GetHospitalShortage(ctx, hospitalID, shortageID)
	if err != nil {
		return false, errorx.Storage("get shortage failed", err)
	}
	if shortage == nil {
		return false, errorx.NotFound("Shortage not found")
	}
	if shortage.Status == etshortage.StatusCancelled {
		return true, nil
	}

	changed, err := s.shortageModule.Cancel(ctx, shortageID, by)
	if err != nil {
		return false, errorx.Storage("cancel shortage failed", err)
	}

	s.logger.InfoContext(ctx, "Shortage cancelled",
		"shortage_id", shortageID,
		"hospital_id", hospitalID,
		"changed", changed,
	)
	return !changed, nil
}

// GetShortage 查询单个短缺（捐赠页使用）
func (s *ShortageService) GetShortage(ctx context.Context, shortageID string) (*etshortage.Shortage, error) {
	shortage, err := s.shortageModule.GetShortage(ctx, shortageID)
	if err != nil {
		return nil, errorx.Storage("get shortage failed", err)
	}
	if shortage == nil {
		return nil, errorx.NotFound("Shortage not found")
	}
	return shortage, nil
}

// HospitalMedicines 医院药品视图：全部短缺，不区分状态
func (s *ShortageService) HospitalMedicines(ctx context.Context, hospitalID string) ([]*etshortage.Shortage, error) {
	shortages, err := s.shortageModule.ListAll(ctx, hospitalID)
	if err != nil {
		return nil, errorx.Storage("list medicines failed", err)
	}
	return shortages, nil
}

// ImportRejection 未能导入的文档
type ImportRejection struct {
	Index  int
	Reason string
}

// ImportReport 历史文档导入结果
type ImportReport struct {
	Imported []*etshortage.Shortage
	Rejected []ImportRejection
}

// ImportLegacyShortages 导入历史形态的短缺文档
// 文档经 NormalizeDocument 规范化后校验入库，hospitalID 以路径参数为准
// 单个文档失败不影响其余文档，存储错误中断整个导入
func (s *ShortageService) ImportLegacyShortages(ctx context.Context, hospitalID string, documents []map[string]any) (*ImportReport, error) {
	if len(documents) == 0 {
		return nil, errorx.Validation("documents cannot be empty", errorx.ErrorDetail{Path: "documents", Info: "at least one document is required"})
	}

	report := &ImportReport{}
	for i, doc := range documents {
		shortage, err := etshortage.NormalizeDocument(doc)
		if err != nil {
			report.Rejected = append(report.Rejected, ImportRejection{Index: i, Reason: err.Error()})
			continue
		}

		shortage.HospitalID = hospitalID
		if shortage.ID == "" {
			shortage.ID = uuid.New().String()
		}
		if err := shortage.Validate(); err != nil {
			report.Rejected = append(report.Rejected, ImportRejection{Index: i, Reason: err.Error()})
			continue
		}

		err = s.shortageModule.CreateShortage(ctx, shortage)
		if errors.Is(err, rpshortage.ErrDuplicateShortage) {
			report.Rejected = append(report.Rejected, ImportRejection{Index: i, Reason: fmt.Sprintf("shortage %s already exists", shortage.ID)})
			continue
		}
		if err != nil {
			return nil, errorx.Storage("import shortage failed", err)
		}
		report.Imported = append(report.Imported, shortage)
	}

	s.logger.InfoContext(ctx, "Legacy shortages imported",
		"hospital_id", hospitalID,
		"imported", len(report.Imported),
		"rejected", len(report.Rejected),
	)
	return report, nil
}

// toValidation 字段错误转换为 ValidationError
func toValidation(err error) error {
	var fe *etshortage.FieldError
	if errors.As(err, &fe) {
		return errorx.Validation(fe.Err.Error(), errorx.ErrorDetail{Path: fe.Field, Info: fe.Err.Error()})
	}
	return errorx.Validation(err.Error())
}
