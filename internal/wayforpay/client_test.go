package wayforpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func signedInvoiceRequest() InvoiceRequest {
	signer := NewSigner("s3cret", ProfileHMACMD5)
	req := InvoiceRequest{
		TransactionType:    "CREATE_INVOICE",
		MerchantAccount:    "MERCH1",
		MerchantDomainName: "domain.com",
		APIVersion:         1,
		OrderReference:     "order_1_42_1700000000",
		OrderDate:          1700000000,
		Amount:             29000,
		Currency:           "UAH",
		ProductName:        []string{"Course"},
		ProductPrice:       []Amount{29000},
		ProductCount:       []int64{1},
	}
	req.MerchantSignature = signer.Sign(req.SignatureFields()...)
	return req
}

func TestCreateInvoice_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var received InvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		require.Equal(t, "CREATE_INVOICE", received.TransactionType)
		require.Equal(t, Amount(29000), received.Amount)
		require.NotEmpty(t, received.MerchantSignature)
		json.NewEncoder(w).Encode(InvoiceResponse{
			Reason:     "Ok",
			ReasonCode: ReasonCodeOK,
			InvoiceURL: "https://secure.wayforpay.com/invoice/abc",
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, server.Client())
	require.NoError(t, err)
	resp, err := client.CreateInvoice(context.Background(), signedInvoiceRequest())
	require.NoError(t, err)
	require.Equal(t, "https://secure.wayforpay.com/invoice/abc", resp.InvoiceURL)
}

func TestCreateInvoice_RejectsUnsignedRequest(t *testing.T) {
	client, err := NewClient(DefaultAPIURL, nil)
	require.NoError(t, err)
	req := signedInvoiceRequest()
	req.MerchantSignature = ""
	_, err = client.CreateInvoice(context.Background(), req)
	require.Error(t, err)
}

func TestCreateInvoice_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, server.Client())
	require.NoError(t, err)
	_, err = client.CreateInvoice(context.Background(), signedInvoiceRequest())
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateInvoice_GatewayRefusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(InvoiceResponse{Reason: "Invalid signature", ReasonCode: Code("1101")})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, server.Client())
	require.NoError(t, err)
	_, err = client.CreateInvoice(context.Background(), signedInvoiceRequest())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateInvoice_NumericReasonCode(t *testing.T) {
	// The gateway flips between numeric and string reason codes.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"reason":"Ok","reasonCode":1100,"invoiceUrl":"https://secure.wayforpay.com/invoice/abc"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, server.Client())
	require.NoError(t, err)
	resp, err := client.CreateInvoice(context.Background(), signedInvoiceRequest())
	require.NoError(t, err)
	require.Equal(t, ReasonCodeOK, resp.ReasonCode)
}
