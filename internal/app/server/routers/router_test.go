package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hopely/internal/app/domains/modules/mddonation"
	"hopely/internal/app/domains/modules/mdfunding"
	"hopely/internal/app/domains/modules/mdpayment"
	"hopely/internal/app/domains/modules/mdprogress"
	"hopely/internal/app/domains/modules/mdshortage"
	"hopely/internal/app/domains/repo/rpaudit"
	"hopely/internal/app/domains/repo/rpdonation"
	"hopely/internal/app/domains/repo/rpshortage"
	"hopely/internal/app/domains/services/svadmin"
	"hopely/internal/app/domains/services/svdonation"
	"hopely/internal/app/domains/services/svpayment"
	"hopely/internal/app/domains/services/svshortage"
	"hopely/internal/app/pkg/auth"
	"hopely/internal/app/pkg/keylock"
	"hopely/internal/app/pkg/logger"
	"hopely/internal/app/server/handlers/admin"
	"hopely/internal/app/server/handlers/donation"
	"hopely/internal/app/server/handlers/payment"
	"hopely/internal/app/server/handlers/shortage"
	"hopely/internal/app/testutil"
)

const (
	testSecret   = "TESTSECRET"
	testMerchant = "1221149"
	jwtSecret    = "operator-secret"
)

type body struct {
	Success bool `json:"success"`
	Meta    struct {
		Code    int    `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
		Details []struct {
			Path string `json:"path"`
			Info string `json:"info"`
		} `json:"details"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

type server struct {
	engine *gin.Engine
	issuer *auth.TokenIssuer
	queue  *testutil.FakeQueue
}

func newServer(t *testing.T, checks map[string]HealthCheck) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	log := logger.NewNopLogger()
	donationRepo := rpdonation.NewDonationRepository(db)
	shortageModule := mdshortage.NewShortageModule(rpshortage.NewShortageRepository(db))
	donationModule := mddonation.NewDonationModule(donationRepo, rpaudit.NewAuditRepository(db))
	progressModule := mdprogress.NewProgressModule(testutil.NewFakePubSub())
	queue := &testutil.FakeQueue{}
	issuer := auth.NewTokenIssuer(jwtSecret, time.Hour)

	paymentService := svpayment.NewPaymentService(
		mdpayment.NewSigner(testSecret),
		mdpayment.NewVerifier(mdpayment.VerifierConfig{
			MerchantSecret:    testSecret,
			SuccessStatusCode: "2",
			BypassSignature:   "BYPASS_FOR_TEST",
			TestOrderPrefix:   "TEST_ORDER",
		}),
		donationModule,
		progressModule,
		queue,
		svpayment.Config{MerchantID: testMerchant, RetryQueue: "payment_notify_retry"},
		log,
	)
	donationService := svdonation.NewDonationService(
		mdfunding.NewFundingModule(donationRepo, keylock.New()),
		donationModule,
		shortageModule,
		progressModule,
		log,
	)

	engine := SetupRoutes(Handlers{
		Shortage: shortage.NewShortageHandler(svshortage.NewShortageService(shortageModule, log)),
		Donation: donation.NewDonationHandler(donationService, paymentService),
		Payment:  payment.NewPaymentHandler(paymentService),
		Admin:    admin.NewAdminHandler(svadmin.NewAdminService(donationModule, progressModule, log)),
	}, issuer, checks, log)

	return &server{engine: engine, issuer: issuer, queue: queue}
}

func (s *server) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, body) {
	t.Helper()
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var b body
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b), w.Body.String())
	}
	return w, b
}

func (s *server) json(t *testing.T, method, path string, payload interface{}) (*httptest.ResponseRecorder, body) {
	t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req)
}

func (s *server) createShortage(t *testing.T, target string) string {
	t.Helper()
	w, b := s.json(t, http.MethodPost, "/api/v1/hospitals/CGH_001/shortages", map[string]interface{}{
		"medicine_name":     "Ceftriaxone 1g",
		"quantity_needed":   200,
		"unit":              "vials",
		"urgency_level":     "HIGH",
		"estimated_funding": target,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b.Data, &created))
	return created.ID
}

func pledge(orderID, shortageID, amount string) map[string]interface{} {
	return map[string]interface{}{
		"order_id":    orderID,
		"shortage_id": shortageID,
		"donor_name":  "Kamala Perera",
		"donor_email": "kamala@example.lk",
		"donor_phone": "0771234567",
		"amount":      amount,
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t, map[string]HealthCheck{
		"mysql": func(ctx context.Context) error { return nil },
	})
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mysql":"ok"`)

	s = newServer(t, map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestShortageLifecycle(t *testing.T) {
	s := newServer(t, nil)
	id := s.createShortage(t, "5000.00")

	w, b := s.json(t, http.MethodGet, "/api/v1/shortages/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"estimated_funding":"5000.00"`)

	w, b = s.json(t, http.MethodGet, "/api/v1/hospitals/CGH_001/shortages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), id)

	w, _ = s.json(t, http.MethodDelete, "/api/v1/hospitals/CGH_001/shortages/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, b = s.json(t, http.MethodDelete, "/api/v1/hospitals/CGH_001/shortages/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"already_cancelled":true`)

	w, b = s.json(t, http.MethodGet, "/api/v1/hospitals/CGH_001/shortages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(b.Data), id)

	w, _ = s.json(t, http.MethodGet, "/api/v1/shortages/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateShortage_BindingValidation(t *testing.T) {
	s := newServer(t, nil)
	w, b := s.json(t, http.MethodPost, "/api/v1/hospitals/CGH_001/shortages", map[string]interface{}{
		"unit": "vials",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, b.Meta.Details)
}

func TestPledge_CappedThenClosed(t *testing.T) {
	s := newServer(t, nil)
	id := s.createShortage(t, "5000")

	w, b := s.json(t, http.MethodPost, "/api/v1/donations", pledge("ORDER_A", id, "4500"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, b = s.json(t, http.MethodPost, "/api/v1/donations", pledge("ORDER_B", id, "1000"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(b.Data), `"amount":"500.00"`)
	assert.Contains(t, string(b.Data), `"was_capped":true`)
	assert.Contains(t, string(b.Data), `"checkout_url":"/api/v1/donations/ORDER_B/checkout"`)

	w, b = s.json(t, http.MethodPost, "/api/v1/donations", pledge("ORDER_C", id, "100"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FundingClosedError", b.Meta.Type)
	assert.Contains(t, string(b.Data), `"remaining_needed":"0.00"`)

	w, _ = s.json(t, http.MethodGet, "/api/v1/donations/ORDER_C", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPledge_ReplayReturnsExisting(t *testing.T) {
	s := newServer(t, nil)

	w, _ := s.json(t, http.MethodPost, "/api/v1/donations", pledge("ORDER_R", "", "250"))
	require.Equal(t, http.StatusOK, w.Code)
	w, b := s.json(t, http.MethodPost, "/api/v1/donations", pledge("ORDER_R", "", "999"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"replayed":true`)
	assert.Contains(t, string(b.Data), `"amount":"250.00"`)
}

func TestPledge_MissingDonorEmail(t *testing.T) {
	s := newServer(t, nil)
	p := pledge("ORDER_V", "", "100")
	delete(p, "donor_email")

	w, b := s.json(t, http.MethodPost, "/api/v1/donations", p)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, b.Meta.Details)
}

func TestPledge_SubCentAmountRejected(t *testing.T) {
	s := newServer(t, nil)

	w, b := s.json(t, http.MethodPost, "/api/v1/donations", pledge("ORDER_TINY", "", "0.004"))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "ValidationError", b.Meta.Type)

	w, _ = s.json(t, http.MethodGet, "/api/v1/donations/ORDER_TINY", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotify_CompletesDonationAndAcks(t *testing.T) {
	s := newServer(t, nil)
	w, _ := s.json(t, http.MethodPost, "/api/v1/donations", pledge("ORDER_1", "", "1000"))
	require.Equal(t, http.StatusOK, w.Code)

	w, b := s.json(t, http.MethodGet, "/api/v1/donations/ORDER_1/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"hash":"59C301C40A6372BDA18E352510252F15"`)

	form := url.Values{
		"merchant_id":      {testMerchant},
		"order_id":         {"ORDER_1"},
		"payment_id":       {"320025071278"},
		"payhere_amount":   {"1000.00"},
		"payhere_currency": {"LKR"},
		"status_code":      {"2"},
		"md5sig":           {"6FEE7EE08CCA115DE85B4E2B16923308"},
		"method":           {"VISA"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	w, b = s.json(t, http.MethodGet, "/api/v1/donations/ORDER_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"status":"completed"`)
	assert.Contains(t, string(b.Data), `"payment_id":"320025071278"`)

	w, _ = s.json(t, http.MethodGet, "/api/v1/donations/ORDER_1/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotify_BadSignatureStillAcks(t *testing.T) {
	s := newServer(t, nil)
	w, _ := s.json(t, http.MethodPost, "/api/v1/donations", pledge("ORDER_1", "", "1000"))
	require.Equal(t, http.StatusOK, w.Code)

	form := url.Values{
		"merchant_id":      {testMerchant},
		"order_id":         {"ORDER_1"},
		"payhere_amount":   {"1000.00"},
		"payhere_currency": {"LKR"},
		"status_code":      {"2"},
		"md5sig":           {"00000000000000000000000000000000"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w, b := s.json(t, http.MethodGet, "/api/v1/donations/ORDER_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"status":"pending"`)
}

func TestPaymentHash(t *testing.T) {
	s := newServer(t, nil)

	w, b := s.json(t, http.MethodPost, "/api/v1/payments/hash", map[string]interface{}{
		"order_id": "ORDER_1",
		"amount":   "1000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(b.Data), `"hash":"59C301C40A6372BDA18E352510252F15"`)
	assert.Contains(t, string(b.Data), `"amount":"1000.00"`)

	w, _ = s.json(t, http.MethodPost, "/api/v1/payments/hash", map[string]interface{}{
		"order_id": "ORDER_1",
		"amount":   "0",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDonation_WaitTimesOutAsProcessing(t *testing.T) {
	s := newServer(t, nil)
	w, _ := s.json(t, http.MethodPost, "/api/v1/donations", pledge("ORDER_W", "", "100"))
	require.Equal(t, http.StatusOK, w.Code)

	w, b := s.json(t, http.MethodGet, "/api/v1/donations/ORDER_W?wait=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3001, b.Meta.Code)
	assert.Contains(t, string(b.Data), `"poll_url":"/api/v1/donations/ORDER_W"`)

	w, _ = s.json(t, http.MethodGet, "/api/v1/donations/ORDER_W?wait=31", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDonationQueries(t *testing.T) {
	s := newServer(t, nil)
	id := s.createShortage(t, "1000")
	for _, order := range []string{"ORDER_1", "ORDER_2"} {
		w, _ := s.json(t, http.MethodPost, "/api/v1/donations", pledge(order, id, "250"))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, b := s.json(t, http.MethodGet, "/api/v1/donations?status=pending&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"total":2`)
	assert.Contains(t, string(b.Data), `"has_next":true`)

	w, _ = s.json(t, http.MethodGet, "/api/v1/donations?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.json(t, http.MethodGet, "/api/v1/donations/totals", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, b = s.json(t, http.MethodGet, "/api/v1/donations/by-shortage/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"progress_percentage":"50`)

	// 未登记的短缺也可以接受捐赠，进度为 0
	w, b = s.json(t, http.MethodGet, "/api/v1/donations/by-shortage/missing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"progress_percentage":"0.00"`)
}

func TestAdmin_RequiresOperatorToken(t *testing.T) {
	s := newServer(t, nil)

	w, _ := s.json(t, http.MethodGet, "/api/v1/admin/donations/pending", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/donations/pending", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w, _ = s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_CompletePending(t *testing.T) {
	s := newServer(t, nil)
	for _, order := range []string{"ORDER_1", "ORDER_2"} {
		w, _ := s.json(t, http.MethodPost, "/api/v1/donations", pledge(order, "", "100"))
		require.Equal(t, http.StatusOK, w.Code)
	}
	token, err := s.issuer.Issue("ops.silva")
	require.NoError(t, err)

	authed := func(method, path string, payload interface{}) (*httptest.ResponseRecorder, body) {
		var buf bytes.Buffer
		if payload != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(payload))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		return s.do(t, req)
	}

	w, b := authed(http.MethodGet, "/api/v1/admin/donations/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), "ORDER_1")

	w, _ = authed(http.MethodPost, "/api/v1/admin/donations/complete", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, b = authed(http.MethodPost, "/api/v1/admin/donations/complete", map[string]interface{}{"order_id": "ORDER_1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(b.Data), `"operator":"ops.silva"`)

	w, _ = authed(http.MethodPost, "/api/v1/admin/donations/complete", map[string]interface{}{"order_id": "ORDER_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = authed(http.MethodPost, "/api/v1/admin/donations/complete", map[string]interface{}{"order_id": "ORDER_404"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, b = authed(http.MethodPost, "/api/v1/admin/donations/complete", map[string]interface{}{"all": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(b.Data), `"completed":["ORDER_2"]`)
	assert.Contains(t, string(b.Data), `"count":1`)
}
