package svdonation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/entity/etshortage"
	"hopely/internal/app/domains/modules/mddonation"
	"hopely/internal/app/domains/modules/mdfunding"
	"hopely/internal/app/domains/modules/mdprogress"
	"hopely/internal/app/domains/modules/mdshortage"
	"hopely/internal/app/domains/repo/rpaudit"
	"hopely/internal/app/domains/repo/rpdonation"
	"hopely/internal/app/domains/repo/rpshortage"
	"hopely/internal/app/pkg/errorx"
	"hopely/internal/app/pkg/keylock"
	"hopely/internal/app/pkg/logger"
	"hopely/internal/app/testutil"
)

type fixture struct {
	svc          *DonationService
	pubsub       *testutil.FakePubSub
	progress     *mdprogress.ProgressModule
	donations    *mddonation.DonationModule
	shortageRepo rpshortage.ShortageRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	donationRepo := rpdonation.NewDonationRepository(db)
	shortageRepo := rpshortage.NewShortageRepository(db)
	pubsub := testutil.NewFakePubSub()

	donations := mddonation.NewDonationModule(donationRepo, rpaudit.NewAuditRepository(db))
	progress := mdprogress.NewProgressModule(pubsub)
	svc := NewDonationService(
		mdfunding.NewFundingModule(donationRepo, keylock.New()),
		donations,
		mdshortage.NewShortageModule(shortageRepo),
		progress,
		logger.NewNopLogger(),
	)
	return &fixture{svc: svc, pubsub: pubsub, progress: progress, donations: donations, shortageRepo: shortageRepo}
}

func (f *fixture) shortage(t *testing.T, id string, target int64) {
	t.Helper()
	spec := etshortage.Spec{MedicineName: "Insulin", QuantityNeeded: 10, Unit: "vials", Urgency: "HIGH"}
	if target > 0 {
		v := decimal.NewFromInt(target)
		spec.FundingTarget = &v
	}
	s, err := etshortage.NewShortage(id, "CGH_001", spec)
	require.NoError(t, err)
	require.NoError(t, f.shortageRepo.Create(context.Background(), s))
}

func pledge(orderID, shortageID string, amount int64) etdonation.PledgeFields {
	return etdonation.PledgeFields{
		OrderID:    orderID,
		ShortageID: shortageID,
		Donor:      etdonation.Donor{Name: "Kamala", Email: "kamala@example.lk", Phone: "0771234567"},
		Amount:     decimal.NewFromInt(amount),
	}
}

func TestRecordPledge_CapsAndPublishesProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.shortage(t, "s-1", 5000)

	_, err := f.svc.RecordPledge(ctx, pledge("ORDER_A1", "s-1", 4500))
	require.NoError(t, err)

	res, err := f.svc.RecordPledge(ctx, pledge("ORDER_A2", "s-1", 1000))
	require.NoError(t, err)
	require.NotNil(t, res.Decision)
	assert.True(t, res.Decision.Snapshot.WasCapped)
	assert.True(t, res.Donation.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "CGH_001", res.Donation.HospitalID)

	msgs := f.pubsub.Published(mdprogress.ProgressChannel("s-1"))
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1], `"current_total":"5000.00"`)
}

func TestRecordPledge_FundingClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.shortage(t, "s-1", 5000)

	_, err := f.svc.RecordPledge(ctx, pledge("ORDER_B1", "s-1", 5000))
	require.NoError(t, err)

	_, err = f.svc.RecordPledge(ctx, pledge("ORDER_B2", "s-1", 100))
	require.Error(t, err)
	assert.True(t, errorx.Is(err, errorx.KindFundingClosed))

	got, err := f.donations.GetDonation(ctx, "ORDER_B2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordPledge_Replay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.RecordPledge(ctx, pledge("ORDER_R", "", 300))
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	again := pledge("ORDER_R", "", 900)
	second, err := f.svc.RecordPledge(ctx, again)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Donation.ID, second.Donation.ID)
	assert.True(t, second.Donation.Amount.Equal(decimal.NewFromInt(300)))
}

func TestRecordPledge_Validation(t *testing.T) {
	f := newFixture(t)

	p := pledge("ORDER_V", "", 100)
	p.Donor.Phone = " "
	_, err := f.svc.RecordPledge(context.Background(), p)
	require.Error(t, err)
	assert.True(t, errorx.Is(err, errorx.KindValidation))
	be, _ := errorx.As(err)
	require.Len(t, be.Details, 1)
	assert.Equal(t, "donor_phone", be.Details[0].Path)

	_, err = f.svc.RecordPledge(context.Background(), pledge("ORDER_V", "", 0))
	assert.True(t, errorx.Is(err, errorx.KindValidation))
}

func TestListDonations_FilterAndPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		_, err := f.svc.RecordPledge(ctx, pledge(fmt.Sprintf("ORDER_%02d", i), "", 100))
		require.NoError(t, err)
	}
	_, err := f.donations.TransitionToCompleted(ctx, "ORDER_01", etdonation.PaymentFields{PaymentID: "p-1"})
	require.NoError(t, err)

	list, page, err := f.svc.ListDonations(ctx, ListQuery{Status: StatusAll, Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.EqualValues(t, 12, page.Total)
	assert.Equal(t, 3, page.TotalPages())
	assert.True(t, page.HasNext())
	assert.True(t, page.HasPrevious())

	completed, page, err := f.svc.ListDonations(ctx, ListQuery{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "ORDER_01", completed[0].OrderID)
	assert.Equal(t, 10, page.Limit)

	_, _, err = f.svc.ListDonations(ctx, ListQuery{Status: "refunded"})
	assert.True(t, errorx.Is(err, errorx.KindValidation))
}

func TestAggregateTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPledge(ctx, pledge("ORDER_T1", "", 1000))
	require.NoError(t, err)
	_, err = f.svc.RecordPledge(ctx, pledge("ORDER_T2", "", 250))
	require.NoError(t, err)
	_, err = f.donations.TransitionToCompleted(ctx, "ORDER_T1", etdonation.PaymentFields{})
	require.NoError(t, err)

	totals, err := f.svc.AggregateTotals(ctx, ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, totals.TotalDonations)
	assert.EqualValues(t, 1, totals.Counts[etdonation.StatusCompleted])
	assert.EqualValues(t, 1, totals.Counts[etdonation.StatusPending])
	assert.True(t, totals.ConfirmedAmount.Equal(decimal.NewFromInt(1000)))
}

func TestGetShortageProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.shortage(t, "s-1", 4000)

	_, err := f.svc.RecordPledge(ctx, pledge("ORDER_P1", "s-1", 1000))
	require.NoError(t, err)
	_, err = f.svc.RecordPledge(ctx, pledge("ORDER_P2", "s-1", 2000))
	require.NoError(t, err)
	_, err = f.donations.TransitionToCompleted(ctx, "ORDER_P1", etdonation.PaymentFields{})
	require.NoError(t, err)

	progress, err := f.svc.GetShortageProgress(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, progress.Donations, 2)
	assert.True(t, progress.TotalDonated.Equal(decimal.NewFromInt(3000)))
	assert.True(t, progress.CompletedAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, progress.PendingAmount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, progress.ProgressPercentage.Equal(decimal.NewFromInt(75)))
}

func TestGetShortageProgress_UnknownShortage(t *testing.T) {
	progress, err := newFixture(t).svc.GetShortageProgress(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, progress.Shortage)
	assert.Empty(t, progress.Donations)
	assert.True(t, progress.ProgressPercentage.IsZero())
}

func TestGetDonation_NotFound(t *testing.T) {
	_, err := newFixture(t).svc.GetDonation(context.Background(), "missing", 0)
	assert.True(t, errorx.Is(err, errorx.KindNotFound))
}

func TestGetDonation_WaitsForCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPledge(ctx, pledge("ORDER_W", "", 500))
	require.NoError(t, err)

	go func() {
		channel := mdprogress.CompletedChannel("ORDER_W")
		for f.pubsub.Subscribers(channel) == 0 {
			time.Sleep(time.Millisecond)
		}
		_, _ = f.donations.TransitionToCompleted(ctx, "ORDER_W", etdonation.PaymentFields{PaymentID: "p-w"})
		_ = f.pubsub.Publish(ctx, channel, `{"order_id":"ORDER_W"}`)
	}()

	donation, err := f.svc.GetDonation(ctx, "ORDER_W", 5)
	require.NoError(t, err)
	assert.Equal(t, etdonation.StatusCompleted, donation.Status)
	assert.Equal(t, "p-w", donation.PaymentID)
}

func TestGetDonation_WaitTimesOutPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPledge(ctx, pledge("ORDER_TO", "", 500))
	require.NoError(t, err)

	donation, err := f.svc.GetDonation(ctx, "ORDER_TO", 1)
	require.NoError(t, err)
	assert.Equal(t, etdonation.StatusPending, donation.Status)
}
