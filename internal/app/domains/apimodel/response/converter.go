package response

import (
	"github.com/shopspring/decimal"

	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/entity/etprimitive"
	"hopely/internal/app/domains/entity/etshortage"
	"hopely/internal/app/domains/repo/rpdonation"
	"hopely/internal/app/domains/services/svdonation"
	"hopely/internal/app/domains/services/svpayment"
	"hopely/internal/app/domains/services/svshortage"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

// FromShortageEntity 从领域对象转换为响应 DTO
func FromShortageEntity(s *etshortage.Shortage) *ShortageResponse {
	return &ShortageResponse{
		ID:                s.ID,
		HospitalID:        s.HospitalID,
		MedicineName:      s.MedicineName,
		GenericName:       s.GenericName,
		QuantityNeeded:    s.QuantityNeeded,
		QuantityAvailable: s.QuantityAvailable,
		Unit:              s.Unit,
		UrgencyLevel:      string(s.Urgency),
		Status:            string(s.Status),
		Description:       s.Description,
		ContactEmail:      s.ContactEmail,
		EstimatedFunding:  optionalMoney(s.FundingTarget),
		FundingCurrency:   s.FundingCurrency,
		CostPerUnit:       optionalMoney(s.CostPerUnit),
		FundingNote:       s.FundingNote,
		ExpirationDate:    s.ExpirationDate,
		CreatedBy:         s.CreatedBy,
		UpdatedBy:         s.UpdatedBy,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// FromShortageEntities 批量转换
func FromShortageEntities(shortages []*etshortage.Shortage) []*ShortageResponse {
	out := make([]*ShortageResponse, 0, len(shortages))
	for _, s := range shortages {
		out = append(out, FromShortageEntity(s))
	}
	return out
}

// FromMedicines 药品视图
func FromMedicines(shortages []*etshortage.Shortage) []*MedicineResponse {
	out := make([]*MedicineResponse, 0, len(shortages))
	for _, s := range shortages {
		out = append(out, &MedicineResponse{
			ShortageID:   s.ID,
			Medicine:     s.MedicineName,
			Available:    s.QuantityAvailable,
			Needed:       s.QuantityNeeded,
			Lack:         s.Lack(),
			Unit:         s.Unit,
			UrgencyLevel: string(s.Urgency),
			Status:       string(s.Status),
		})
	}
	return out
}

// FromImportReport 导入结果
func FromImportReport(report *svshortage.ImportReport) *ImportReportResponse {
	resp := &ImportReportResponse{
		Imported: FromShortageEntities(report.Imported),
		Rejected: make([]ImportRejection, 0, len(report.Rejected)),
	}
	for _, r := range report.Rejected {
		resp.Rejected = append(resp.Rejected, ImportRejection{Index: r.Index, Reason: r.Reason})
	}
	return resp
}

// FromDonationEntity 从领域对象转换为响应 DTO
func FromDonationEntity(d *etdonation.Donation) *DonationResponse {
	return &DonationResponse{
		ID:            d.ID,
		OrderID:       d.OrderID,
		ShortageID:    d.ShortageID,
		HospitalID:    d.HospitalID,
		DonorName:     d.Donor.Name,
		DonorEmail:    d.Donor.Email,
		DonorPhone:    d.Donor.Phone,
		DonorAddress:  d.Donor.Address,
		DonorCity:     d.Donor.City,
		MedicineName:  d.MedicineName,
		HospitalName:  d.HospitalName,
		Note:          d.Note,
		Amount:        money(d.Amount),
		Currency:      d.Currency,
		Status:        string(d.Status),
		PaymentID:     d.PaymentID,
		PaymentMethod: d.PaymentMethod,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		CompletedAt:   d.CompletedAt,
	}
}

// FromDonationEntities 批量转换
func FromDonationEntities(donations []*etdonation.Donation) []*DonationResponse {
	out := make([]*DonationResponse, 0, len(donations))
	for _, d := range donations {
		out = append(out, FromDonationEntity(d))
	}
	return out
}

// FromPledgeResult 认捐结果
func FromPledgeResult(result *svdonation.PledgeResult, checkoutURL string) *PledgeResponse {
	resp := &PledgeResponse{
		Donation:    FromDonationEntity(result.Donation),
		Replayed:    result.Replayed,
		CheckoutURL: checkoutURL,
	}
	if result.Decision != nil {
		snapshot := result.Decision.Snapshot
		resp.Funding = &snapshot
	}
	return resp
}

// FromPagination 分页信息
func FromPagination(p etprimitive.Pagination) PaginationResponse {
	return PaginationResponse{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       p.Total,
		TotalPages:  p.TotalPages(),
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
	}
}

// FromTotals 汇总
func FromTotals(t *rpdonation.Totals) *TotalsResponse {
	counts := make(map[string]int64, len(t.Counts))
	for status, n := range t.Counts {
		counts[string(status)] = n
	}
	return &TotalsResponse{
		TotalDonations:  t.TotalDonations,
		Counts:          counts,
		ConfirmedAmount: money(t.ConfirmedAmount),
	}
}

// FromShortageProgress 筹款进度
func FromShortageProgress(p *svdonation.ShortageProgress) *ShortageProgressResponse {
	resp := &ShortageProgressResponse{
		ShortageID:         p.ShortageID,
		TotalDonated:       money(p.TotalDonated),
		CompletedAmount:    money(p.CompletedAmount),
		PendingAmount:      money(p.PendingAmount),
		DonationCount:      len(p.Donations),
		ProgressPercentage: money(p.ProgressPercentage),
		Donations:          FromDonationEntities(p.Donations),
	}
	if p.Shortage != nil {
		resp.Shortage = FromShortageEntity(p.Shortage)
		resp.FundingTarget = optionalMoney(p.Shortage.FundingTarget)
	}
	return resp
}

// FromCheckoutForm 收银台表单
func FromCheckoutForm(f *svpayment.CheckoutForm) *CheckoutFormResponse {
	return &CheckoutFormResponse{
		ActionURL:  f.ActionURL,
		Sandbox:    f.Sandbox,
		MerchantID: f.MerchantID,
		ReturnURL:  f.ReturnURL,
		CancelURL:  f.CancelURL,
		NotifyURL:  f.NotifyURL,
		OrderID:    f.OrderID,
		Items:      f.Items,
		Amount:     f.Amount,
		Currency:   f.Currency,
		Hash:       f.Hash,
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		Phone:      f.Phone,
		Address:    f.Address,
		City:       f.City,
		Country:    f.Country,
	}
}
