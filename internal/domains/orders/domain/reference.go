package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// referencePrefix tags every reference minted by this service.
const referencePrefix = "order"

// ErrBadReference signals a reference that does not follow the
// order_<productID>_<beneficiaryID>_<epoch>[_<nonce>] convention.
var ErrBadReference = errors.New("malformed order reference")

// Reference is the structured order identifier. It deliberately encodes the
// beneficiary and product so the callback reconciler can recover both
// without a lookup; the price of that choice is the strict parser below.
type Reference struct {
	ProductID     int64
	BeneficiaryID int64
	IssuedAt      time.Time
	Nonce         string
}

// NewReference mints a reference for one purchase attempt. A random nonce
// segment keeps two orders from the same beneficiary within the same second
// from colliding.
func NewReference(productID, beneficiaryID int64, issuedAt time.Time) Reference {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return Reference{
		ProductID:     productID,
		BeneficiaryID: beneficiaryID,
		IssuedAt:      issuedAt,
		Nonce:         hex.EncodeToString(buf),
	}
}

// String encodes the reference. References with a nonce use the four-segment
// form; legacy three-segment references round-trip without one.
func (r Reference) String() string {
	base := fmt.Sprintf("%s_%d_%d_%d", referencePrefix, r.ProductID, r.BeneficiaryID, r.IssuedAt.Unix())
	if r.Nonce == "" {
		return base
	}
	return base + "_" + r.Nonce
}

// ParseReference decodes a reference with a fixed-arity split. Both the
// legacy three-segment and the current four-segment forms are accepted;
// any other shape, non-numeric id, or non-positive value fails with
// ErrBadReference rather than a panic.
func ParseReference(raw string) (Reference, error) {
	parts := strings.Split(raw, "_")
	if len(parts) != 4 && len(parts) != 5 {
		return Reference{}, fmt.Errorf("%w: %q", ErrBadReference, raw)
	}
	if parts[0] != referencePrefix {
		return Reference{}, fmt.Errorf("%w: %q", ErrBadReference, raw)
	}
	productID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || productID <= 0 {
		return Reference{}, fmt.Errorf("%w: bad product id in %q", ErrBadReference, raw)
	}
	beneficiaryID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || beneficiaryID <= 0 {
		return Reference{}, fmt.Errorf("%w: bad beneficiary id in %q", ErrBadReference, raw)
	}
	epoch, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || epoch <= 0 {
		return Reference{}, fmt.Errorf("%w: bad timestamp in %q", ErrBadReference, raw)
	}
	ref := Reference{
		ProductID:     productID,
		BeneficiaryID: beneficiaryID,
		IssuedAt:      time.Unix(epoch, 0).UTC(),
	}
	if len(parts) == 5 {
		if parts[4] == "" {
			return Reference{}, fmt.Errorf("%w: empty nonce in %q", ErrBadReference, raw)
		}
		ref.Nonce = parts[4]
	}
	return ref, nil
}
