package analyzers

import (
	"testing"

	"github.com/meshackyaro/Sanctifier/internal/config"
)

func TestRegisterBuiltinOrder(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterBuiltin()

	want := []string{
		"auth_gaps", "panics", "arithmetic", "ledger_size", "custom_rules",
		"events", "upgrade", "storage_collisions", "complexity", "gas_estimation",
	}
	got := reg.Analyzers()
	if len(got) != len(want) {
		t.Fatalf("registered %d analyzers, want %d", len(got), len(want))
	}
	for i, a := range got {
		if a.Meta().Name != want[i] {
			t.Fatalf("position %d is %s, want %s", i, a.Meta().Name, want[i])
		}
	}
}

func TestActiveRespectsEnabledRules(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterBuiltin()

	cfg := config.Default()
	if got := len(reg.Active(cfg)); got != len(reg.Analyzers()) {
		t.Fatalf("default config should enable everything, got %d", got)
	}

	cfg.EnabledRules = []string{"panics", "auth_gaps"}
	active := reg.Active(cfg)
	if len(active) != 2 {
		t.Fatalf("expected 2 active analyzers, got %d", len(active))
	}
	// registration order survives the filter
	if active[0].Meta().Name != "auth_gaps" || active[1].Meta().Name != "panics" {
		t.Fatalf("active order = %s, %s", active[0].Meta().Name, active[1].Meta().Name)
	}
}
