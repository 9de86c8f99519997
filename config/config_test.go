package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := Default()
	if got := float64(cfg.Scale()); got != 1280 {
		t.Fatalf("default scale = %v steps/deg, want 1280", got)
	}
	if cfg.MaxVelocity != 4.0 || cfg.MaxAcceleration != 1.0 {
		t.Fatalf("default ceilings = (%v, %v)", cfg.MaxVelocity, cfg.MaxAcceleration)
	}
	limits := cfg.Limits()
	if limits.Min != -90 || limits.Max != 90 {
		t.Fatalf("default limits = %+v", limits)
	}
	rates := cfg.RateTable()
	if !(rates.Slow < rates.Medium && rates.Medium < rates.Center && rates.Center < rates.Guide) {
		t.Fatalf("default rates not monotonic: %+v", rates)
	}
}

func TestLoadPartial(t *testing.T) {
	cfg, err := Load([]byte(`{
		"gear_ratio": 100,
		"max_velocity": 2.5,
		"rates": {"guide": 1.5}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	// 200 * 16 * 100 / 360
	if got := float64(cfg.Scale()); got < 888.8 || got > 888.9 {
		t.Fatalf("scale = %v, want ~888.89", got)
	}
	if cfg.MaxVelocity != 2.5 {
		t.Fatalf("max_velocity = %v", cfg.MaxVelocity)
	}
	if cfg.Rates.Guide != 1.5 || cfg.Rates.Slow != 0.1 {
		t.Fatalf("rates = %+v", cfg.Rates)
	}
}

func TestExplicitScaleWins(t *testing.T) {
	cfg, err := Load([]byte(`{"steps_per_degree": 1000, "gear_ratio": 50}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := float64(cfg.Scale()); got != 1000 {
		t.Fatalf("scale = %v, want explicit 1000", got)
	}
}

func TestLoadErrors(t *testing.T) {
	bad := []string{
		`{`,
		`{"max_velocity": -1}`,
		`{"max_acceleration": -2}`,
		`{"min_declination": 45, "max_declination": -45}`,
		`{"steps_per_degree": -10}`,
	}
	for _, in := range bad {
		if _, err := Load([]byte(in)); err == nil {
			t.Errorf("Load(%s) accepted", in)
		}
	}
}
