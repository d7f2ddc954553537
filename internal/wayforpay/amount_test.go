package wayforpay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmount_String(t *testing.T) {
	require.Equal(t, "290.00", Amount(29000).String())
	require.Equal(t, "290.05", Amount(29005).String())
	require.Equal(t, "0.01", Amount(1).String())
	require.Equal(t, "0.00", Amount(0).String())
	require.Equal(t, "-10.50", Amount(-1050).String())
}

func TestParseAmount(t *testing.T) {
	for raw, want := range map[string]Amount{
		"290":    29000,
		"290.0":  29000,
		"290.00": 29000,
		"290.5":  29050,
		"290.05": 29005,
		"0.01":   1,
	} {
		got, err := ParseAmount(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}
}

func TestParseAmount_Malformed(t *testing.T) {
	for _, raw := range []string{"", "290.005", "abc", "290.ab", "2 90"} {
		_, err := ParseAmount(raw)
		require.ErrorIs(t, err, ErrBadAmount, raw)
	}
}

func TestAmount_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Amount(29000))
	require.NoError(t, err)
	require.Equal(t, "290.00", string(data))

	var decoded Amount
	require.NoError(t, json.Unmarshal([]byte(`290`), &decoded))
	require.Equal(t, Amount(29000), decoded)
	require.NoError(t, json.Unmarshal([]byte(`"290.00"`), &decoded))
	require.Equal(t, Amount(29000), decoded)
	require.Error(t, json.Unmarshal([]byte(`290.123`), &decoded))
}

func TestCode_UnmarshalJSON(t *testing.T) {
	var c Code
	require.NoError(t, json.Unmarshal([]byte(`1100`), &c))
	require.Equal(t, ReasonCodeOK, c)
	require.NoError(t, json.Unmarshal([]byte(`"1100"`), &c))
	require.Equal(t, ReasonCodeOK, c)
}
