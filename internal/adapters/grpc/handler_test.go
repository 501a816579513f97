package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/quentinrf/backlightd/internal/adapters/memory"
	"github.com/quentinrf/backlightd/internal/adapters/mock"
	"github.com/quentinrf/backlightd/internal/domain"
	"github.com/quentinrf/backlightd/internal/ports"
)

// startTestServer creates an in-process gRPC server and returns a connected client.
// The server is stopped when the test ends.
func startTestServer(t *testing.T, repo domain.RampRepository, sensor ports.AmbientSensor) *StatusClient {
	t.Helper()

	rng, err := domain.NewBacklightRange(1000)
	if err != nil {
		t.Fatalf("NewBacklightRange: %v", err)
	}
	backlight := mock.NewFakeBacklight(1000, 250)
	handler := NewStatusHandler(rng, repo, sensor, backlight)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	srv := grpc.NewServer()
	RegisterStatusServer(srv, handler)

	go srv.Serve(lis)
	t.Cleanup(func() {
		srv.GracefulStop()
	})

	conn, err := grpc.NewClient(
		lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewStatusClient(conn)
}

func number(s *structpb.Struct, key string) float64 {
	return s.GetFields()[key].GetNumberValue()
}

func TestGetStatus_NoRamps(t *testing.T) {
	client := startTestServer(t, memory.NewRampRepository(), mock.NewScriptedSensor(150))

	resp, err := client.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}

	checks := map[string]float64{
		"min":                50,
		"max":                1000,
		"step":               10,
		"brightness":         250,
		"brightness_percent": 25,
		"lux":                150,
		"target":             1000,
	}
	for key, want := range checks {
		if got := number(resp, key); got != want {
			t.Errorf("%s: expected %v, got %v", key, want, got)
		}
	}
	if band := resp.GetFields()["band"].GetStringValue(); band != string(domain.BandMediumIndoor) {
		t.Errorf("expected band %q, got %q", domain.BandMediumIndoor, band)
	}
	if _, ok := resp.GetFields()["last_ramp"]; ok {
		t.Error("expected no last_ramp before any ramp ran")
	}
}

func TestGetStatus_WithLatestRamp(t *testing.T) {
	repo := memory.NewRampRepository()
	ctx := context.Background()
	now := time.Now()

	_ = repo.SaveRamp(ctx, &domain.RampRecord{Lux: 0, From: 50, Target: 960, Final: 950, Steps: 90,
		Outcome: domain.RampConverged, StartedAt: now.Add(-time.Minute)})
	_ = repo.SaveRamp(ctx, &domain.RampRecord{Lux: 600, From: 950, Target: 1000, Final: 990, Steps: 4,
		Outcome: domain.RampCancelled, StartedAt: now})

	client := startTestServer(t, repo, mock.NewScriptedSensor(600))

	resp, err := client.GetStatus(ctx)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}

	last := resp.GetFields()["last_ramp"].GetStructValue()
	if last == nil {
		t.Fatal("expected last_ramp")
	}
	if got := number(last, "lux"); got != 600 {
		t.Errorf("expected last ramp lux 600, got %v", got)
	}
	if got := last.GetFields()["outcome"].GetStringValue(); got != string(domain.RampCancelled) {
		t.Errorf("expected outcome cancelled, got %q", got)
	}
}

func TestGetStatus_SensorFailure(t *testing.T) {
	sensor := mock.NewScriptedSensor(100).FailAt(0, errors.New("read in_illuminance_raw: no such file"))
	client := startTestServer(t, memory.NewRampRepository(), sensor)

	_, err := client.GetStatus(context.Background())
	if status.Code(err) != codes.Internal {
		t.Errorf("expected Internal, got %v", err)
	}
}

func TestGetHistory_TimeRange(t *testing.T) {
	repo := memory.NewRampRepository()
	ctx := context.Background()
	now := time.Now()

	seed := []*domain.RampRecord{
		{Lux: 1, Steps: 10, Outcome: domain.RampConverged, StartedAt: now.Add(-48 * time.Hour)},
		{Lux: 2, Steps: 20, Outcome: domain.RampConverged, StartedAt: now.Add(-30 * time.Second), Duration: time.Second},
		{Lux: 3, Steps: 4, Outcome: domain.RampFailed, Error: "access denied", StartedAt: now.Add(-20 * time.Second), Duration: 2 * time.Second},
		{Lux: 4, Steps: 0, Outcome: domain.RampCancelled, StartedAt: now.Add(-10 * time.Second)},
	}
	for _, r := range seed {
		_ = repo.SaveRamp(ctx, r)
	}

	client := startTestServer(t, repo, mock.NewScriptedSensor(100))

	resp, err := client.GetHistory(ctx, now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}

	ramps := resp.GetFields()["ramps"].GetListValue().GetValues()
	if len(ramps) != 3 {
		t.Fatalf("expected 3 ramps, got %d", len(ramps))
	}
	for i, want := range []float64{2, 3, 4} {
		if got := number(ramps[i].GetStructValue(), "lux"); got != want {
			t.Errorf("ramp %d: expected lux %v, got %v", i, want, got)
		}
	}
	if got := ramps[1].GetStructValue().GetFields()["error"].GetStringValue(); got != "access denied" {
		t.Errorf("expected error text on failed ramp, got %q", got)
	}

	checks := map[string]float64{
		"count":            3,
		"converged":        1,
		"failed":           1,
		"cancelled":        1,
		"average_steps":    8,
		"average_duration": 1,
	}
	for key, want := range checks {
		if got := number(resp, key); got != want {
			t.Errorf("%s: expected %v, got %v", key, want, got)
		}
	}
}

func TestGetHistory_EmptyRange(t *testing.T) {
	client := startTestServer(t, memory.NewRampRepository(), mock.NewScriptedSensor(100))

	start := time.Now().Add(-48 * time.Hour)
	end := time.Now().Add(-47 * time.Hour)

	resp, err := client.GetHistory(context.Background(), start, end)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if got := len(resp.GetFields()["ramps"].GetListValue().GetValues()); got != 0 {
		t.Errorf("expected 0 ramps, got %d", got)
	}
	if got := number(resp, "count"); got != 0 {
		t.Errorf("expected count 0, got %v", got)
	}
}

func TestGetHistory_InvalidRange(t *testing.T) {
	client := startTestServer(t, memory.NewRampRepository(), mock.NewScriptedSensor(100))

	now := time.Now()
	_, err := client.GetHistory(context.Background(), now, now.Add(-time.Hour))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}
