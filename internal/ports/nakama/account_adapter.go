package nakama

import (
	"context"
	"fmt"

	"coinche/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// accountAdapter writes display names through Nakama's account API.
type accountAdapter struct {
	nk runtime.NakamaModule
}

func newAccountAdapter(nk runtime.NakamaModule) *accountAdapter {
	return &accountAdapter{nk: nk}
}

func (a *accountAdapter) SetDisplayName(ctx context.Context, userID, displayName string) error {
	if err := a.nk.AccountUpdateId(ctx, userID, "", nil, displayName, "", "", "", ""); err != nil {
		return fmt.Errorf("update display name of %s: %w", userID, err)
	}
	return nil
}

var _ ports.AccountPort = (*accountAdapter)(nil)
