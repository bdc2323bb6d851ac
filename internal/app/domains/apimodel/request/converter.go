package request

import (
	"strings"

	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/entity/etshortage"
)

// ToSpec 将 Request DTO 转换为领域对象
func (r *CreateShortageRequest) ToSpec() etshortage.Spec {
	return etshortage.Spec{
		MedicineName:      r.MedicineName,
		GenericName:       r.GenericName,
		QuantityNeeded:    r.QuantityNeeded,
		QuantityAvailable: r.QuantityAvailable,
		Unit:              r.Unit,
		Urgency:           r.UrgencyLevel,
		Description:       r.Description,
		ContactEmail:      r.ContactEmail,
		FundingTarget:     r.EstimatedFunding,
		CostPerUnit:       r.CostPerUnit,
		FundingNote:       r.FundingNote,
		ExpirationDate:    r.ExpirationDate,
		CreatedBy:         r.CreatedBy,
	}
}

// ToPledgeFields 将 Request DTO 转换为领域对象
func (r *CreatePledgeRequest) ToPledgeFields() etdonation.PledgeFields {
	return etdonation.PledgeFields{
		OrderID:    strings.TrimSpace(r.OrderID),
		ShortageID: strings.TrimSpace(r.ShortageID),
		HospitalID: strings.TrimSpace(r.HospitalID),
		Donor: etdonation.Donor{
			Name:    r.DonorName,
			Email:   r.DonorEmail,
			Phone:   r.DonorPhone,
			Address: r.DonorAddress,
			City:    r.DonorCity,
		},
		MedicineName: r.MedicineName,
		HospitalName: r.HospitalName,
		Note:         r.Note,
		Amount:       r.Amount,
		Currency:     r.Currency,
		MerchantID:   r.MerchantID,
	}
}
