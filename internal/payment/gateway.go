package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

// GatewayClient talks to the external payment processor. It does one
// request per call and never retries; bounded retrying is the reconciler's
// job.
type GatewayClient struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func NewGatewayClient(baseURL string, client *http.Client, log *logger.Logger) *GatewayClient {
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  log,
	}
}

// Purchase submits a signed initiation request. A transport failure is
// returned as an error; a gateway-level rejection comes back inside the
// response with a non-zero ResCode.
func (g *GatewayClient) Purchase(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseResponse, error) {
	var res models.PurchaseResponse
	if err := g.post(ctx, "/Request/PaymentRequest", req, &res); err != nil {
		return nil, err
	}
	g.logger.LogGateway("PURCHASE", fmt.Sprintf("order %d: ResCode=%s", req.OrderID, res.ResCode))
	return &res, nil
}

// Verify asks the gateway for the outcome of a token. A (nil, nil) return
// means the gateway answered but has no definitive result yet; callers must
// treat that as "pending", not as an error.
func (g *GatewayClient) Verify(ctx context.Context, token, signData string) (*models.TransactionOutcome, error) {
	body, err := json.Marshal(models.VerifyRequest{Token: token, SignData: signData})
	if err != nil {
		return nil, fmt.Errorf("marshal verify request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/Advice/Verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create verify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway verify: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read verify response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway verify returned status %d", resp.StatusCode)
	}

	// An empty body or a body without a result code means the transaction
	// is not settled yet.
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var outcome models.TransactionOutcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	if outcome.ResCode == "" {
		return nil, nil
	}

	g.logger.LogGateway("VERIFY", fmt.Sprintf("ResCode=%s refNo=%s", outcome.ResCode, outcome.RetrievalRefNo))
	return &outcome, nil
}

func (g *GatewayClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
