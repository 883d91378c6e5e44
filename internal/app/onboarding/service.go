package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"coinche/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	DisplayName string
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service.
// accounts must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		rng:      rng,
	}
}

// OnboardNewUser gives a newly created account a friendly display name.
// A failed profile update is reported in Result, not as an error, so the
// player can still sit down under the default table name.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}
	if userID == "" {
		return Result{}, fmt.Errorf("user id is required")
	}

	result := Result{DisplayName: s.generateFriendlyName()}
	if err := s.accounts.SetDisplayName(ctx, userID, result.DisplayName); err != nil {
		result.ProfileUpdateErr = err
	}
	return result, nil
}

// generateFriendlyName always fits the 18 rune table name limit.
func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Rusé", "Vif", "Malin", "Brave", "Calme", "Fier", "Agile", "Sage", "Futé", "Hardi"}
	nouns := []string{"Renard", "Hibou", "Loup", "Lynx", "Ours", "Aigle", "Castor", "Faucon", "Blaireau", "Chamois"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(90) + 10

	return fmt.Sprintf("%s%s%d", noun, adj, num)
}
