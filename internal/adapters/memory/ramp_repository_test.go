package memory

import (
	"context"
	"testing"
	"time"

	"github.com/quentinrf/backlightd/internal/domain"
)

func TestSaveRamp_AssignsIDAndCopies(t *testing.T) {
	repo := NewRampRepository()
	ctx := context.Background()

	ramp := &domain.RampRecord{Lux: 10, Target: 960, StartedAt: time.Now()}
	if err := repo.SaveRamp(ctx, ramp); err != nil {
		t.Fatalf("SaveRamp failed: %v", err)
	}
	if ramp.ID != 1 {
		t.Fatalf("expected ID 1, got %d", ramp.ID)
	}

	// Mutating the caller's record must not change what was stored
	ramp.Lux = 999

	got, err := repo.GetRamp(ctx, 1)
	if err != nil {
		t.Fatalf("GetRamp failed: %v", err)
	}
	if got.Lux != 10 {
		t.Errorf("expected stored lux 10, got %d", got.Lux)
	}
}

func TestGetLatestRamp(t *testing.T) {
	repo := NewRampRepository()
	ctx := context.Background()

	if _, err := repo.GetLatestRamp(ctx); err != domain.ErrRampNotFound {
		t.Errorf("expected ErrRampNotFound on empty repo, got %v", err)
	}

	now := time.Now()
	_ = repo.SaveRamp(ctx, &domain.RampRecord{Lux: 1, StartedAt: now.Add(-time.Minute)})
	_ = repo.SaveRamp(ctx, &domain.RampRecord{Lux: 2, StartedAt: now})

	got, err := repo.GetLatestRamp(ctx)
	if err != nil {
		t.Fatalf("GetLatestRamp failed: %v", err)
	}
	if got.Lux != 2 {
		t.Errorf("expected latest lux 2, got %d", got.Lux)
	}
}

func TestGetRampsInRange_HalfOpenAndOrdered(t *testing.T) {
	repo := NewRampRepository()
	ctx := context.Background()

	ts := time.Now().Truncate(time.Second)
	_ = repo.SaveRamp(ctx, &domain.RampRecord{Lux: 3, StartedAt: ts.Add(2 * time.Second)})
	_ = repo.SaveRamp(ctx, &domain.RampRecord{Lux: 1, StartedAt: ts})
	_ = repo.SaveRamp(ctx, &domain.RampRecord{Lux: 2, StartedAt: ts.Add(time.Second)})
	_ = repo.SaveRamp(ctx, &domain.RampRecord{Lux: 4, StartedAt: ts.Add(3 * time.Second)})

	got, err := repo.GetRampsInRange(ctx, ts, ts.Add(3*time.Second))
	if err != nil {
		t.Fatalf("GetRampsInRange failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 ramps, got %d", len(got))
	}
	for i, want := range []int{1, 2, 3} {
		if got[i].Lux != want {
			t.Errorf("ramp %d: expected lux %d, got %d", i, want, got[i].Lux)
		}
	}
}

func TestDeleteOldRamps(t *testing.T) {
	repo := NewRampRepository()
	ctx := context.Background()

	old := &domain.RampRecord{StartedAt: time.Now().Add(-48 * time.Hour)}
	recent := &domain.RampRecord{StartedAt: time.Now()}
	_ = repo.SaveRamp(ctx, old)
	_ = repo.SaveRamp(ctx, recent)

	if err := repo.DeleteOldRamps(ctx, 24*time.Hour); err != nil {
		t.Fatalf("DeleteOldRamps failed: %v", err)
	}

	if _, err := repo.GetRamp(ctx, old.ID); err != domain.ErrRampNotFound {
		t.Errorf("expected old ramp to be deleted, got err: %v", err)
	}
	if _, err := repo.GetRamp(ctx, recent.ID); err != nil {
		t.Errorf("expected recent ramp to remain, got err: %v", err)
	}
}
