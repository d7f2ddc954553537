// Package local provides development fallbacks for the grant issuer when no
// Telegram credentials are configured: random redemption tokens and
// log-only delivery.
package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/massagesobi/storefront/internal/domains/grants/ports"
)

var (
	_ ports.InviteSource = (*TokenSource)(nil)
	_ ports.Notifier     = (*LogNotifier)(nil)
)

// TokenSource mints opaque random redemption tokens instead of chat invite
// links.
type TokenSource struct{}

func NewTokenSource() *TokenSource { return &TokenSource{} }

func (*TokenSource) MintInvite(_ context.Context, _ int64) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// LogNotifier records deliveries in the log instead of messaging anyone.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) DeliverGrant(ctx context.Context, beneficiaryID int64, token string) error {
	if n.logger != nil {
		n.logger.InfoContext(ctx, "grant delivery (local)",
			slog.Int64("beneficiary_id", beneficiaryID), slog.String("token", token))
	}
	return nil
}
