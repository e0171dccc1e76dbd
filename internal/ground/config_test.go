package ground

import (
	"context"
	"testing"

	"stripsplan/internal/lifted"
)

func TestDefaultConfigUsesRelationalBackend(t *testing.T) {
	if DefaultConfig().Backend != Relational {
		t.Errorf("expected default backend %q, got %q", Relational, DefaultConfig().Backend)
	}
}

func TestConfigLayered(t *testing.T) {
	if (Config{}).layered() {
		t.Error("zero-value config should not be layered")
	}
	if !(Config{MaxLayers: 3}).layered() {
		t.Error("a positive MaxLayers should mark the config layered")
	}
	if !(Config{MaxAtoms: 100}).layered() {
		t.Error("a positive MaxAtoms should mark the config layered")
	}
}

func TestGroundRejectsUnknownBackend(t *testing.T) {
	d := lifted.NewDomain("d")
	d.Types.Declare("obj")
	p := lifted.NewProblem("p", d, lifted.NewObjectUniverse(d.Types))

	_, err := Ground(context.Background(), p, Config{Backend: "quantum"})
	if err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}
