package ws

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"coinche/internal/app"
	"coinche/internal/config"
	"coinche/internal/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const roomCodeLen = 4

// Hub is the registry of open rooms.
type Hub struct {
	ctx      context.Context
	cfg      *config.GameConfig
	recorder ports.MatchRecorder
	logger   *zap.Logger

	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand
}

// NewHub creates an empty registry. Rooms stop when ctx is cancelled.
// recorder may be nil.
func NewHub(ctx context.Context, cfg *config.GameConfig, recorder ports.MatchRecorder, logger *zap.Logger) *Hub {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		ctx:      ctx,
		cfg:      cfg,
		recorder: recorder,
		logger:   logger,
		rooms:    make(map[string]*Room),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateRoom opens a room under a fresh code and starts its goroutine.
func (h *Hub) CreateRoom(variant app.Variant) *Room {
	h.mu.Lock()
	code := h.freeCodeLocked()
	room := newRoom(code, variant, h.cfg, h.rng.Int63(), h.recorder, h.logger, h.remove)
	h.rooms[code] = room
	h.mu.Unlock()

	h.logger.Info("room created", zap.String("room", code), zap.String("variant", string(variant)))
	go room.run(h.ctx)
	return room
}

// Room looks up a room by code, case-insensitively.
func (h *Hub) Room(code string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[strings.ToUpper(strings.TrimSpace(code))]
	return room, ok
}

// Rooms lists open rooms ordered by code.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.RLock()
	out := make([]RoomInfo, 0, len(h.rooms))
	for _, room := range h.rooms {
		out = append(out, room.Info())
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (h *Hub) remove(code string) {
	h.mu.Lock()
	delete(h.rooms, code)
	h.mu.Unlock()
	h.logger.Info("room removed", zap.String("room", code))
}

// freeCodeLocked derives a short code from a uuid, widening it on repeated
// collisions.
func (h *Hub) freeCodeLocked() string {
	n := roomCodeLen
	for attempt := 0; ; attempt++ {
		if attempt > 0 && attempt%8 == 0 && n < 32 {
			n++
		}
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:n])
		if _, taken := h.rooms[code]; !taken {
			return code
		}
	}
}

func newMatchID() string {
	return uuid.NewString()
}
