package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ms-registration/internal/auth"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/registration"
)

type Handler struct {
	Service       *registration.Service
	Logger        *logger.Logger
	ResultPageURL string
}

// InitPayment prices the requested workshops and starts a gateway
// transaction. The response body is the gateway redirect token; a zero-price
// order is committed synchronously and returns an empty token.
func (h *Handler) InitPayment(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req registration.InitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("InitPayment: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.WorkshopIDs) == 0 {
		http.Error(w, "workshopIds is required", http.StatusBadRequest)
		return
	}

	result, err := h.Service.InitiatePayment(r.Context(), userID, req)
	if err != nil {
		h.writeInitError(w, err)
		return
	}

	if result.Free {
		h.Logger.Info("API", "InitPayment: free registration committed")
	} else {
		h.Logger.Info("API", fmt.Sprintf("InitPayment: gateway token issued for amount %d", result.Amount))
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(result.Token)); err != nil {
		h.Logger.Error("API", fmt.Sprintf("InitPayment: failed to write response: %v", err))
	}
}

func (h *Handler) writeInitError(w http.ResponseWriter, err error) {
	var rejection *registration.GatewayRejectionError

	switch {
	case errors.Is(err, registration.ErrWorkshopNotFound),
		errors.Is(err, registration.ErrUserNotFound):
		h.Logger.Warn("API", fmt.Sprintf("InitPayment: %v", err))
		http.Error(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, registration.ErrNoEligibleWorkshops):
		h.Logger.Warn("API", fmt.Sprintf("InitPayment: %v", err))
		http.Error(w, err.Error(), http.StatusBadRequest)

	case errors.As(err, &rejection):
		h.Logger.Warn("API", fmt.Sprintf("InitPayment: %v", err))
		http.Error(w, rejection.Description, http.StatusBadRequest)

	default:
		h.Logger.Error("API", fmt.Sprintf("InitPayment: %v", err))
		http.Error(w, "payment initiation failed", http.StatusInternalServerError)
	}
}

// VerifyPayment is the public gateway callback. Whatever happens inside the
// reconciliation, the caller is answered with a redirect to the result page;
// only a malformed body short-circuits to a bare 500.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	cb, err := parseCallback(r)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("VerifyPayment: malformed callback: %v", err))
		http.Error(w, "malformed callback", http.StatusInternalServerError)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("VerifyPayment: callback for order %d, ResCode=%s", cb.OrderID, cb.ResCode))

	result := h.Service.ReconcilePayment(r.Context(), cb)
	http.Redirect(w, r, h.resultURL(result), http.StatusFound)
}

func parseCallback(r *http.Request) (models.PaymentCallback, error) {
	var cb models.PaymentCallback

	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
			return cb, fmt.Errorf("decode callback body: %w", err)
		}
		return cb, nil
	}

	// Gateways typically post the callback form-encoded.
	if err := r.ParseForm(); err != nil {
		return cb, fmt.Errorf("parse callback form: %w", err)
	}
	orderID, err := strconv.ParseInt(r.PostFormValue("OrderId"), 10, 64)
	if err != nil {
		return cb, fmt.Errorf("parse OrderId: %w", err)
	}
	cb.ResCode = r.PostFormValue("ResCode")
	cb.OrderID = orderID
	cb.Token = r.PostFormValue("token")
	return cb, nil
}

func (h *Handler) resultURL(result registration.VerifyResult) string {
	u, err := url.Parse(h.ResultPageURL)
	if err != nil {
		// Misconfigured result page; redirect somewhere deterministic.
		u = &url.URL{Path: "/paymentresult"}
	}

	q := u.Query()
	q.Set("status", string(result.Status))
	q.Set("stage", result.Stage)
	if result.Status == registration.StatusGood && result.Outcome != nil {
		q.Set("refNo", result.Outcome.RetrievalRefNo)
		q.Set("traceNo", result.Outcome.SystemTraceNo)
		q.Set("amount", strconv.FormatInt(result.Outcome.Amount, 10))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
