package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

const (
	VoiceActionLogin = "login"
	VoiceActionJoin  = "join"

	voiceTokenTTL = time.Hour
)

var ErrVoiceNotConfigured = errors.New("voice config is incomplete")

// VoiceService signs Vivox access tokens so players at a table can share a
// voice channel named after it.
type VoiceService struct {
	secret string
	issuer string
	domain string
	now    func() time.Time
}

func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{secret: secret, issuer: issuer, domain: domain, now: time.Now}
}

// TableChannel is the voice channel of a table.
func TableChannel(tableID string) string {
	return "coinche-" + tableID
}

// Token signs an HS256 token for user. Join tokens target the table channel.
func (s *VoiceService) Token(user, action, tableID string) (string, error) {
	if s == nil || s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", ErrVoiceNotConfigured
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}

	from := s.userURI(user)
	var to string
	switch action {
	case VoiceActionLogin:
		to = from
	case VoiceActionJoin:
		if tableID == "" {
			return "", fmt.Errorf("table id is required for join tokens")
		}
		to = s.channelURI(TableChannel(tableID))
	default:
		return "", fmt.Errorf("unsupported voice action: %s", action)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": user,
		"exp": now.Add(voiceTokenTTL).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", now.UnixNano(), rand.Int63()),
		"f":   from,
		"t":   to,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}

func (s *VoiceService) userURI(user string) string {
	return "sip:." + s.issuer + "." + user + ".@" + s.domain
}

func (s *VoiceService) channelURI(channel string) string {
	return "sip:confctl-g-" + channel + "@" + s.domain
}
