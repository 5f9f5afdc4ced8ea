package models

// GatewaySuccessCode is the only result code the gateway uses for success,
// both in callbacks and verification outcomes.
const GatewaySuccessCode = "0"

// PurchaseRequest is the signed initiation payload sent to the gateway.
type PurchaseRequest struct {
	MerchantID string `json:"MerchantId"`
	TerminalID string `json:"TerminalId"`
	Amount     int64  `json:"Amount"`
	OrderID    int64  `json:"OrderId"`
	ReturnURL  string `json:"ReturnUrl"`
	SignData   string `json:"SignData"`
	Identity   string `json:"Identity"`
}

type PurchaseResponse struct {
	ResCode     string `json:"ResCode"`
	Token       string `json:"Token"`
	Description string `json:"Description"`
}

// VerifyRequest asks the gateway for the outcome of a token it issued.
type VerifyRequest struct {
	Token    string `json:"Token"`
	SignData string `json:"SignData"`
}

// TransactionOutcome is the gateway's definitive answer for one transaction.
// A nil outcome from a verify call means "not resolved yet", which is not an
// error.
type TransactionOutcome struct {
	ResCode        string `json:"ResCode"`
	Amount         int64  `json:"Amount"`
	RetrievalRefNo string `json:"RetrievalRefNo"`
	SystemTraceNo  string `json:"SystemTraceNo"`
}

// Succeeded reports whether the gateway settled the transaction.
func (o *TransactionOutcome) Succeeded() bool {
	return o != nil && o.ResCode == GatewaySuccessCode
}

// PaymentCallback is the body the gateway posts back after the payer returns.
type PaymentCallback struct {
	ResCode string `json:"ResCode"`
	OrderID int64  `json:"OrderId"`
	Token   string `json:"token"`
}
