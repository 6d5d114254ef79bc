package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	AutosaveEveryTicks int `yaml:"autosave_every_ticks"`

	CellSizeDeg    float64 `yaml:"cell_size_deg"`
	RenderRadius   int     `yaml:"render_radius"`
	InteractRadius int     `yaml:"interact_radius"`

	// SpawnPermille < 0 in the file means "no tokens ever spawn"; 0 means
	// unset and takes the default.
	SpawnPermille    int `yaml:"spawn_permille"`
	VictoryThreshold int `yaml:"victory_threshold"`
	PickupScore      int `yaml:"pickup_score"`
	CraftScore       int `yaml:"craft_score"`

	// Used when the movement source reports no position at session start.
	OriginFallbackLat float64 `yaml:"origin_fallback_lat"`
	OriginFallbackLng float64 `yaml:"origin_fallback_lng"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.applyDefaults()
	return t, nil
}

func Defaults() Tuning {
	var t Tuning
	t.applyDefaults()
	return t
}

func (t *Tuning) applyDefaults() {
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = "1.0"
	}
	if t.TickRateHz <= 0 {
		t.TickRateHz = 5
	}
	if t.AutosaveEveryTicks <= 0 {
		t.AutosaveEveryTicks = 300
	}
	if t.CellSizeDeg <= 0 {
		t.CellSizeDeg = 1e-4
	}
	if t.RenderRadius <= 0 {
		t.RenderRadius = 8
	}
	if t.InteractRadius <= 0 {
		t.InteractRadius = 3
	}
	switch {
	case t.SpawnPermille < 0:
		t.SpawnPermille = 0
	case t.SpawnPermille == 0:
		t.SpawnPermille = 120
	case t.SpawnPermille > 1000:
		t.SpawnPermille = 1000
	}
	if t.VictoryThreshold <= 0 {
		t.VictoryThreshold = 32
	}
	if t.PickupScore <= 0 {
		t.PickupScore = 1
	}
	if t.CraftScore <= 0 {
		t.CraftScore = 2
	}
}
