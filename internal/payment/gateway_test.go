package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *GatewayClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGatewayClient(server.URL, server.Client(), logger.NewLogger())
}

func TestPurchase_Success(t *testing.T) {
	var gotPath string
	var gotReq models.PurchaseRequest

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(models.PurchaseResponse{ResCode: "0", Token: "tok-1"})
	})

	res, err := gw.Purchase(context.Background(), models.PurchaseRequest{
		MerchantID: "m-1",
		TerminalID: "t-1",
		Amount:     50000,
		OrderID:    4242,
		SignData:   "SIGNED",
	})

	assert.NoError(t, err)
	assert.Equal(t, "/Request/PaymentRequest", gotPath)
	assert.Equal(t, int64(4242), gotReq.OrderID)
	assert.Equal(t, "0", res.ResCode)
	assert.Equal(t, "tok-1", res.Token)
}

func TestPurchase_Rejection(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.PurchaseResponse{ResCode: "17", Description: "merchant not active"})
	})

	res, err := gw.Purchase(context.Background(), models.PurchaseRequest{OrderID: 1})

	// A gateway-level rejection is a normal response, not a transport error.
	assert.NoError(t, err)
	assert.Equal(t, "17", res.ResCode)
}

func TestPurchase_ServerError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := gw.Purchase(context.Background(), models.PurchaseRequest{OrderID: 1})
	assert.Error(t, err)
}

func TestVerify_Settled(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Advice/Verify", r.URL.Path)

		var req models.VerifyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok-1", req.Token)
		assert.Equal(t, "SIGNED", req.SignData)

		json.NewEncoder(w).Encode(models.TransactionOutcome{
			ResCode:        "0",
			Amount:         50000,
			RetrievalRefNo: "ref-1",
			SystemTraceNo:  "trace-1",
		})
	})

	outcome, err := gw.Verify(context.Background(), "tok-1", "SIGNED")

	assert.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, "ref-1", outcome.RetrievalRefNo)
}

func TestVerify_EmptyBodyMeansPending(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	outcome, err := gw.Verify(context.Background(), "tok-1", "SIGNED")

	assert.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestVerify_MissingResCodeMeansPending(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Amount": 0}`))
	})

	outcome, err := gw.Verify(context.Background(), "tok-1", "SIGNED")

	assert.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestVerify_ServerError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := gw.Verify(context.Background(), "tok-1", "SIGNED")
	assert.Error(t, err)
}

func TestVerify_MalformedBody(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := gw.Verify(context.Background(), "tok-1", "SIGNED")
	assert.Error(t, err)
}
