package application

import "errors"

// Callback rejection taxonomy. All of these must reach the webhook handler
// as errors so it can respond uniformly; none of them may leave a trace in
// the ledger.
var (
	// ErrMalformedCallback covers missing or unparseable required fields.
	ErrMalformedCallback = errors.New("malformed callback payload")
	// ErrInvalidSignature covers forged or corrupted callbacks.
	ErrInvalidSignature = errors.New("callback signature mismatch")
	// ErrUnknownOrder covers well-signed callbacks for references this
	// ledger never minted.
	ErrUnknownOrder = errors.New("callback references unknown order")
	// ErrAmountMismatch covers callbacks whose amount or currency disagree
	// with the ledger row.
	ErrAmountMismatch = errors.New("callback amount disagrees with order")
)

// Invoice creation failures surfaced to the storefront.
var (
	ErrUnknownProduct = errors.New("unknown product")
	// ErrGatewayUnavailable means the order was written but the gateway
	// call failed; the order stays pending and the caller may retry.
	ErrGatewayUnavailable = errors.New("invoice creation failed, retry")
)
