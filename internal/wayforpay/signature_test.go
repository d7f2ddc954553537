package wayforpay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var vectorFields = []string{
	"MERCH1", "domain.com", "order_1_42_1700000000", "1700000000",
	"290.00", "UAH", "Course", "1", "290.00",
}

func TestSign_KnownAnswerSuffixMD5(t *testing.T) {
	signer := NewSigner("s3cret", ProfileSuffixMD5)
	require.Equal(t, "d82625eb5cef8811c355ecdbb47849b0", signer.Sign(vectorFields...))
}

func TestSign_KnownAnswerHMACMD5(t *testing.T) {
	signer := NewSigner("s3cret", ProfileHMACMD5)
	require.Equal(t, "d761e5e19b6af6cdcfea5c0895db6112", signer.Sign(vectorFields...))
}

func TestSign_AmountRenderingChangesDigest(t *testing.T) {
	// "290" and "290.00" are the same value but different signed bytes. The
	// digest must move, which is why the canonical rendering matters.
	signer := NewSigner("s3cret", ProfileSuffixMD5)
	drifted := append([]string{}, vectorFields...)
	drifted[4] = "290"
	require.Equal(t, "680b13def26a193225ea81e90ad8b6fe", signer.Sign(drifted...))
	require.NotEqual(t, signer.Sign(vectorFields...), signer.Sign(drifted...))
}

func TestVerify_RoundTripBothProfiles(t *testing.T) {
	for _, profile := range []Profile{ProfileHMACMD5, ProfileSuffixMD5} {
		signer := NewSigner("s3cret", profile)
		sig := signer.Sign(vectorFields...)
		require.True(t, signer.Verify(sig, vectorFields...), "profile %s", profile)
	}
}

func TestVerify_SingleCharacterMutation(t *testing.T) {
	signer := NewSigner("s3cret", ProfileHMACMD5)
	sig := signer.Sign(vectorFields...)

	mutated := []byte(sig)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	require.False(t, signer.Verify(string(mutated), vectorFields...))

	tampered := append([]string{}, vectorFields...)
	tampered[4] = "290.01"
	require.False(t, signer.Verify(sig, tampered...))
}

func TestVerify_EmptySignature(t *testing.T) {
	signer := NewSigner("s3cret", ProfileHMACMD5)
	require.False(t, signer.Verify("", vectorFields...))
	require.False(t, signer.Verify("   ", vectorFields...))
}

func TestVerify_CaseInsensitiveHex(t *testing.T) {
	signer := NewSigner("s3cret", ProfileSuffixMD5)
	require.True(t, signer.Verify("D82625EB5CEF8811C355ECDBB47849B0", vectorFields...))
}

func TestParseProfile(t *testing.T) {
	profile, err := ParseProfile("")
	require.NoError(t, err)
	require.Equal(t, ProfileHMACMD5, profile)

	profile, err = ParseProfile("Suffix-MD5")
	require.NoError(t, err)
	require.Equal(t, ProfileSuffixMD5, profile)

	_, err = ParseProfile("sha1")
	require.Error(t, err)
}

func TestSign_DifferentSecretsDiverge(t *testing.T) {
	a := NewSigner("s3cret", ProfileHMACMD5)
	b := NewSigner("other", ProfileHMACMD5)
	require.NotEqual(t, a.Sign(vectorFields...), b.Sign(vectorFields...))
	require.False(t, b.Verify(a.Sign(vectorFields...), vectorFields...))
}
