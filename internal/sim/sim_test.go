package sim

import (
	"testing"
)

func TestSelfPlayManySeeds(t *testing.T) {
	for seed := int64(1); seed <= 100; seed++ {
		if _, err := RunSelfPlay(seed, 6, 2000); err != nil {
			t.Fatalf("self-play failed: %v", err)
		}
	}
}

func TestSelfPlayFullMatch(t *testing.T) {
	res, err := RunSelfPlay(7, 1000, 100000)
	if err != nil {
		t.Fatalf("self-play failed: %v", err)
	}
	if !res.Finished {
		t.Fatalf("match not finished after %d hands", res.Hands)
	}
	if res.Scores.Of(res.Winner) < 1501 {
		t.Fatalf("winner %s scored %d", res.Winner, res.Scores.Of(res.Winner))
	}
}

func TestSelfPlayIsReplayable(t *testing.T) {
	a, err := RunSelfPlay(20250211, 4, 2000)
	if err != nil {
		t.Fatalf("self-play failed: %v", err)
	}
	b, err := RunSelfPlay(20250211, 4, 2000)
	if err != nil {
		t.Fatalf("self-play failed: %v", err)
	}
	if a != b {
		t.Fatalf("replay diverged: %+v vs %+v", a, b)
	}
}

func FuzzSelfPlay(f *testing.F) {
	f.Add(int64(1))
	f.Add(int64(42))
	f.Add(int64(20250211))
	f.Fuzz(func(t *testing.T, seed int64) {
		if _, err := RunSelfPlay(seed, 3, 1000); err != nil {
			t.Fatalf("self-play failed: %v", err)
		}
	})
}
