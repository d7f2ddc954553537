package wayforpay

import (
	"strconv"
	"strings"
)

// Merchant identifies the signing merchant account.
type Merchant struct {
	Account string
	Domain  string
}

// Code is a gateway reason code. The gateway is inconsistent about sending
// it as a JSON number or string, so it normalizes to a string here and is
// signed in that form.
type Code string

// UnmarshalJSON accepts both numeric and quoted reason codes.
func (c *Code) UnmarshalJSON(data []byte) error {
	*c = Code(strings.Trim(strings.TrimSpace(string(data)), `"`))
	return nil
}

// ReasonCodeOK is the gateway's success reason for API responses.
const ReasonCodeOK Code = "1100"

// InvoiceRequest is the CREATE_INVOICE payload.
//
// Field names and the signature field order are a hard vendor contract;
// see SignatureFields.
type InvoiceRequest struct {
	TransactionType    string   `json:"transactionType"`
	MerchantAccount    string   `json:"merchantAccount"`
	MerchantDomainName string   `json:"merchantDomainName"`
	MerchantSignature  string   `json:"merchantSignature,omitempty"`
	APIVersion         int      `json:"apiVersion"`
	OrderReference     string   `json:"orderReference"`
	OrderDate          int64    `json:"orderDate"`
	Amount             Amount   `json:"amount"`
	Currency           string   `json:"currency"`
	ProductName        []string `json:"productName"`
	ProductPrice       []Amount `json:"productPrice"`
	ProductCount       []int64  `json:"productCount"`
	ServiceURL         string   `json:"serviceUrl,omitempty"`
}

// SignatureFields returns the signed fields in the vendor-mandated order:
// merchantAccount;merchantDomainName;orderReference;orderDate;amount;
// currency;productName[];productCount[];productPrice[].
func (r InvoiceRequest) SignatureFields() []string {
	fields := []string{
		r.MerchantAccount,
		r.MerchantDomainName,
		r.OrderReference,
		strconv.FormatInt(r.OrderDate, 10),
		r.Amount.String(),
		r.Currency,
	}
	fields = append(fields, r.ProductName...)
	for _, count := range r.ProductCount {
		fields = append(fields, strconv.FormatInt(count, 10))
	}
	for _, price := range r.ProductPrice {
		fields = append(fields, price.String())
	}
	return fields
}

// InvoiceResponse is the gateway reply to CREATE_INVOICE.
type InvoiceResponse struct {
	Reason     string `json:"reason"`
	ReasonCode Code   `json:"reasonCode"`
	InvoiceURL string `json:"invoiceUrl"`
	QRCode     string `json:"qrCode,omitempty"`
}

// Transaction statuses reported by the gateway on the service URL.
const (
	TxStatusApproved    = "Approved"
	TxStatusDeclined    = "Declined"
	TxStatusExpired     = "Expired"
	TxStatusInProcess   = "InProcessing"
	TxStatusWaitingAuth = "WaitingAuthComplete"
	TxStatusPending     = "Pending"
	TxStatusVoided      = "RefundedVoided"
)

// Callback is the payment confirmation pushed to the service URL. The
// transport is unauthenticated; MerchantSignature is the only proof of
// origin.
type Callback struct {
	MerchantAccount   string `json:"merchantAccount"`
	OrderReference    string `json:"orderReference"`
	MerchantSignature string `json:"merchantSignature"`
	Amount            Amount `json:"amount"`
	Currency          string `json:"currency"`
	AuthCode          string `json:"authCode"`
	CardPan           string `json:"cardPan"`
	TransactionStatus string `json:"transactionStatus"`
	ReasonCode        Code   `json:"reasonCode"`
}

// Complete reports whether the fields required for verification are present.
func (c Callback) Complete() bool {
	return c.MerchantAccount != "" &&
		c.OrderReference != "" &&
		c.Currency != "" &&
		c.TransactionStatus != "" &&
		c.MerchantSignature != ""
}

// SignatureFields returns the signed fields in the vendor-mandated order:
// merchantAccount;orderReference;amount;currency;authCode;cardPan;
// transactionStatus;reasonCode.
func (c Callback) SignatureFields() []string {
	return []string{
		c.MerchantAccount,
		c.OrderReference,
		c.Amount.String(),
		c.Currency,
		c.AuthCode,
		c.CardPan,
		c.TransactionStatus,
		string(c.ReasonCode),
	}
}

// Outcome is the closed transaction outcome variant mapped once from the
// gateway's raw status and reason code, instead of magic-value checks at
// call sites.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeApproved
	OutcomeDeclined
	OutcomeExpired
	OutcomeInProcess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeDeclined:
		return "declined"
	case OutcomeExpired:
		return "expired"
	case OutcomeInProcess:
		return "in_process"
	default:
		return "unknown"
	}
}

// MapOutcome folds the raw transaction status into an Outcome.
func MapOutcome(transactionStatus string) Outcome {
	switch transactionStatus {
	case TxStatusApproved:
		return OutcomeApproved
	case TxStatusDeclined, TxStatusVoided:
		return OutcomeDeclined
	case TxStatusExpired:
		return OutcomeExpired
	case TxStatusInProcess, TxStatusWaitingAuth, TxStatusPending:
		return OutcomeInProcess
	default:
		return OutcomeUnknown
	}
}

// Acknowledgment statuses returned to the gateway.
const (
	AckAccept = "accept"
	AckRefuse = "refuse"
)

// Ack is the response body the gateway expects after delivering a callback.
type Ack struct {
	OrderReference string `json:"orderReference"`
	Status         string `json:"status"`
	Time           int64  `json:"time"`
	Signature      string `json:"signature"`
}

// NewAck signs an acknowledgment over orderReference;status;time. This is a
// distinct signing profile from the invoice request and must not reuse its
// field order.
func NewAck(signer *Signer, orderReference, status string, now int64) Ack {
	return Ack{
		OrderReference: orderReference,
		Status:         status,
		Time:           now,
		Signature:      signer.Sign(orderReference, status, strconv.FormatInt(now, 10)),
	}
}
