package svpayment

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hopely/internal/app/domains/entity/etaudit"
	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/modules/mddonation"
	"hopely/internal/app/domains/modules/mdpayment"
	"hopely/internal/app/domains/modules/mdprogress"
	"hopely/internal/app/domains/repo/rpaudit"
	"hopely/internal/app/domains/repo/rpdonation"
	"hopely/internal/app/pkg/errorx"
	"hopely/internal/app/pkg/idgen"
	"hopely/internal/app/pkg/logger"
	"hopely/internal/app/testutil"
	"hopely/internal/common/model"
)

const (
	testSecret   = "TESTSECRET"
	testMerchant = "1221149"
	// MD5(1221149 ORDER_1 1000.00 LKR 2 UPPER(MD5(TESTSECRET)))
	validSig = "6FEE7EE08CCA115DE85B4E2B16923308"
)

type fixture struct {
	svc          *PaymentService
	db           *gorm.DB
	donationRepo rpdonation.DonationRepository
	donations    *mddonation.DonationModule
	pubsub       *testutil.FakePubSub
	queue        *testutil.FakeQueue
}

func newFixture(t *testing.T, sandbox bool) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	donationRepo := rpdonation.NewDonationRepository(db)
	donations := mddonation.NewDonationModule(donationRepo, rpaudit.NewAuditRepository(db))
	pubsub := testutil.NewFakePubSub()
	queue := &testutil.FakeQueue{}

	svc := NewPaymentService(
		mdpayment.NewSigner(testSecret),
		mdpayment.NewVerifier(mdpayment.VerifierConfig{
			MerchantSecret:    testSecret,
			Sandbox:           sandbox,
			SuccessStatusCode: "2",
			BypassSignature:   "BYPASS_FOR_TEST",
			TestOrderPrefix:   "TEST_ORDER",
		}),
		donations,
		mdprogress.NewProgressModule(pubsub),
		queue,
		Config{
			MerchantID: testMerchant,
			Sandbox:    sandbox,
			ReturnURL:  "https://hopely.lk/payment/success",
			CancelURL:  "https://hopely.lk/payment/cancel",
			NotifyURL:  "https://api.hopely.lk/api/v1/payments/notify",
			RetryQueue: "payment_notify_retry",
		},
		logger.NewNopLogger(),
	)
	return &fixture{svc: svc, db: db, donationRepo: donationRepo, donations: donations, pubsub: pubsub, queue: queue}
}

func (f *fixture) pledge(t *testing.T, orderID string, amount int64) {
	t.Helper()
	d, err := etdonation.NewPledge(idgen.GenerateID(), etdonation.PledgeFields{
		OrderID:      orderID,
		ShortageID:   "s-1",
		Donor:        etdonation.Donor{Name: "Nimal Perera Silva", Email: "nimal@example.lk", Phone: "0771234567"},
		MedicineName: "Insulin",
		HospitalName: "Colombo General",
		Amount:       decimal.NewFromInt(amount),
	}, decimal.NewFromInt(amount))
	require.NoError(t, err)
	require.NoError(t, f.donationRepo.Create(context.Background(), d))
}

func validForm() map[string]string {
	return map[string]string{
		"merchant_id":      testMerchant,
		"order_id":         "ORDER_1",
		"payhere_amount":   "1000.00",
		"payhere_currency": "LKR",
		"status_code":      "2",
		"md5sig":           validSig,
		"payment_id":       "320025071178",
		"method":           "VISA",
	}
}

func (f *fixture) auditKinds(t *testing.T, orderID string) []etaudit.Kind {
	t.Helper()
	entries, err := f.donations.AuditTrail(context.Background(), orderID)
	require.NoError(t, err)
	kinds := make([]etaudit.Kind, 0, len(entries))
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestIssuePaymentHash_UsesConfigDefaults(t *testing.T) {
	f := newFixture(t, false)

	hash, err := f.svc.IssuePaymentHash(context.Background(), "", "ORDER_1", decimal.NewFromInt(1000), "")
	require.NoError(t, err)
	assert.Equal(t, "59C301C40A6372BDA18E352510252F15", hash.Hash)
	assert.Equal(t, testMerchant, hash.MerchantID)
	assert.Equal(t, "1000.00", hash.Amount)
	assert.Equal(t, "LKR", hash.Currency)

	_, err = f.svc.IssuePaymentHash(context.Background(), "", "", decimal.NewFromInt(1000), "")
	assert.True(t, errorx.Is(err, errorx.KindValidation))
	_, err = f.svc.IssuePaymentHash(context.Background(), "", "ORDER_1", decimal.Zero, "")
	assert.True(t, errorx.Is(err, errorx.KindValidation))
}

func TestBuildCheckoutForm(t *testing.T) {
	f := newFixture(t, true)
	f.pledge(t, "ORDER_1", 1000)

	form, err := f.svc.BuildCheckoutForm(context.Background(), "ORDER_1")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", form.Amount)
	assert.Equal(t, "59C301C40A6372BDA18E352510252F15", form.Hash)
	assert.Equal(t, testMerchant, form.MerchantID)
	assert.Equal(t, "Nimal", form.FirstName)
	assert.Equal(t, "Perera Silva", form.LastName)
	assert.Equal(t, "Not provided", form.Address)
	assert.Equal(t, "Colombo", form.City)
	assert.Equal(t, "Sri Lanka", form.Country)
	assert.Equal(t, "Donation for Insulin at Colombo General", form.Items)
	assert.True(t, form.Sandbox)
	assert.Equal(t, mdpayment.SandboxCheckoutURL, form.ActionURL)

	_, err = f.svc.BuildCheckoutForm(context.Background(), "missing")
	assert.True(t, errorx.Is(err, errorx.KindNotFound))
}

func TestBuildCheckoutForm_RejectsCompleted(t *testing.T) {
	f := newFixture(t, false)
	f.pledge(t, "ORDER_1", 1000)
	_, err := f.svc.HandleNotification(context.Background(), validForm())
	require.NoError(t, err)

	_, err = f.svc.BuildCheckoutForm(context.Background(), "ORDER_1")
	assert.True(t, errorx.Is(err, errorx.KindValidation))
}

// 重复的有效通知只完成一次，已确认金额只增加一次
func TestHandleNotification_DuplicateIsIdempotent(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.pledge(t, "ORDER_1", 1000)

	first, err := f.svc.HandleNotification(ctx, validForm())
	require.NoError(t, err)
	assert.True(t, first.Verdict.Accepted)
	assert.Equal(t, rpdonation.TransitionUpdated, first.Transition)

	second, err := f.svc.HandleNotification(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, rpdonation.TransitionAlreadyCompleted, second.Transition)

	totals, err := f.donations.Totals(ctx, rpdonation.Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, totals.TotalDonations)
	assert.EqualValues(t, 1, totals.Counts[etdonation.StatusCompleted])
	assert.True(t, totals.ConfirmedAmount.Equal(decimal.NewFromInt(1000)))

	d, err := f.donations.GetDonation(ctx, "ORDER_1")
	require.NoError(t, err)
	assert.Equal(t, "320025071178", d.PaymentID)
	assert.Equal(t, "VISA", d.PaymentMethod)

	// 只有第一次发布完成事件
	assert.Len(t, f.pubsub.Published(mdprogress.CompletedChannel("ORDER_1")), 1)
	assert.Len(t, f.pubsub.Published(mdprogress.ProgressChannel("s-1")), 1)
	assert.Equal(t, []etaudit.Kind{etaudit.KindNotificationAccepted, etaudit.KindNotificationAccepted}, f.auditKinds(t, "ORDER_1"))
}

func TestHandleNotification_RejectedLeavesPending(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.pledge(t, "ORDER_1", 1000)

	form := validForm()
	form["payhere_amount"] = "1.00"
	outcome, err := f.svc.HandleNotification(ctx, form)
	require.NoError(t, err)
	assert.False(t, outcome.Verdict.Accepted)
	assert.Zero(t, outcome.Transition)
	require.NotNil(t, outcome.Rejection)
	assert.True(t, errorx.Is(outcome.Rejection, errorx.KindSignature))

	d, err := f.donations.GetDonation(ctx, "ORDER_1")
	require.NoError(t, err)
	assert.Equal(t, etdonation.StatusPending, d.Status)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, []etaudit.Kind{etaudit.KindNotificationRejected}, f.auditKinds(t, "ORDER_1"))
	assert.Empty(t, f.pubsub.Published(mdprogress.CompletedChannel("ORDER_1")))

	entries, err := f.donations.AuditTrail(ctx, "ORDER_1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SignatureVerificationFailure", entries[0].Payload["error_kind"])
}

func TestHandleNotification_FallbackInsert(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	outcome, err := f.svc.HandleNotification(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, rpdonation.TransitionFallbackInserted, outcome.Transition)

	d, err := f.donations.GetDonation(ctx, "ORDER_1")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, etdonation.StatusCompleted, d.Status)
	assert.Equal(t, etdonation.SyntheticDonorName, d.Donor.Name)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, []etaudit.Kind{etaudit.KindNotificationAccepted, etaudit.KindFallbackInsert}, f.auditKinds(t, "ORDER_1"))
}

func TestHandleNotification_SandboxUnparsableAmountIsNotApplied(t *testing.T) {
	f := newFixture(t, true)

	form := validForm()
	form["order_id"] = "ORDER_X"
	form["payhere_amount"] = "abc"
	outcome, err := f.svc.HandleNotification(context.Background(), form)
	require.NoError(t, err)
	assert.False(t, outcome.Verdict.Accepted)

	d, err := f.donations.GetDonation(context.Background(), "ORDER_X")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestHandleNotification_Bypass(t *testing.T) {
	f := newFixture(t, false)
	f.pledge(t, "TEST_ORDER_9", 250)

	outcome, err := f.svc.HandleNotification(context.Background(), map[string]string{
		"order_id": "TEST_ORDER_9",
		"md5sig":   "BYPASS_FOR_TEST",
	})
	require.NoError(t, err)
	assert.Equal(t, mdpayment.ModeBypass, outcome.Verdict.Mode)
	assert.Equal(t, rpdonation.TransitionUpdated, outcome.Transition)
}

func TestHandleNotification_MissingSecret(t *testing.T) {
	f := newFixture(t, false)
	f.svc.verifier = mdpayment.NewVerifier(mdpayment.VerifierConfig{})

	_, err := f.svc.HandleNotification(context.Background(), validForm())
	assert.True(t, errorx.Is(err, errorx.KindConfiguration))
}

func TestHandleNotification_StorageFailureEnqueuesRetry(t *testing.T) {
	f := newFixture(t, false)
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	outcome, err := f.svc.HandleNotification(logger.WithRequestID(context.Background(), "req-1"), validForm())
	require.NoError(t, err)
	assert.True(t, outcome.Enqueued)

	jobs := f.queue.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "payment_notify_retry", jobs[0].Queue)

	var job model.NotificationRetryJob
	require.NoError(t, json.Unmarshal(jobs[0].Data, &job))
	assert.Equal(t, "ORDER_1", job.OrderID)
	assert.Equal(t, "req-1", job.RequestID)
	assert.Equal(t, validSig, job.Fields["md5sig"])
}

func TestHandleNotification_StorageAndQueueFailure(t *testing.T) {
	f := newFixture(t, false)
	f.queue.PublishErr = testutil.ErrQueueUnavailable
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = f.svc.HandleNotification(context.Background(), validForm())
	assert.True(t, errorx.Is(err, errorx.KindStorage))
}

func TestProcessRetry(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.pledge(t, "ORDER_1", 1000)

	job := &model.NotificationRetryJob{OrderID: "ORDER_1", Fields: validForm(), Attempt: 1}
	require.NoError(t, f.svc.ProcessRetry(ctx, job))
	require.NoError(t, f.svc.ProcessRetry(ctx, job))

	d, err := f.donations.GetDonation(ctx, "ORDER_1")
	require.NoError(t, err)
	assert.Equal(t, etdonation.StatusCompleted, d.Status)
	assert.Empty(t, f.queue.Jobs(), "retries never re-enqueue")
}
