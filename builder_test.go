package symgo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/symgo"
	"github.com/hupe1980/symgo/archive"
	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/infer"
	"github.com/hupe1980/symgo/logic"
)

func TestBuilder_Dense_Basic(t *testing.T) {
	eng, err := symgo.Dense(256).
		Seed(42).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer eng.Close()

	if got := eng.Space().Strategy(); got != hdc.StrategyDense {
		t.Errorf("expected dense strategy, got %v", got)
	}
	if got := eng.Space().Geometry(); got != 256 {
		t.Errorf("expected geometry 256, got %d", got)
	}
	if got := eng.Space().Seed(); got != 42 {
		t.Errorf("expected seed 42, got %d", got)
	}

	ctx := context.Background()
	if _, err := eng.AddFact(ctx, "Dog", "IS_A", "mammal"); err != nil {
		t.Fatalf("AddFact failed: %v", err)
	}

	res, err := eng.Query(ctx, "Dog", "IS_A", "mammal")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if res.Truth != infer.TrueCertain {
		t.Errorf("expected TRUE_CERTAIN, got %v", res.Truth)
	}
}

func TestBuilder_Dense_FullOptions(t *testing.T) {
	rel := infer.NewRelations()
	rel.SetTransitive("IS_A")

	eng, err := symgo.Dense(512).
		Seed(7).
		Epsilon(0.04).
		Theory("zoo").
		Relations(rel).
		Decay(0.8).
		MaxDepth(8).
		Thresholds(0.9, 0.7).
		Slack(16).
		Compression(archive.CompressionLZ4).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer eng.Close()

	ctx := context.Background()
	if _, err := eng.AddFact(ctx, "Dog", "IS_A", "mammal"); err != nil {
		t.Fatalf("AddFact failed: %v", err)
	}
	if _, err := eng.AddFact(ctx, "mammal", "IS_A", "animal"); err != nil {
		t.Fatalf("AddFact failed: %v", err)
	}

	// The supplied relation table is live, not copied.
	res, err := eng.Query(ctx, "Dog", "IS_A", "animal")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if res.Method != "transitive" {
		t.Errorf("expected transitive derivation, got %q", res.Method)
	}
}

func TestBuilder_Sparse_Basic(t *testing.T) {
	eng, err := symgo.Sparse(1024).
		Density(1.0 / 32).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer eng.Close()

	if got := eng.Space().Strategy(); got != hdc.StrategySparse {
		t.Errorf("expected sparse strategy, got %v", got)
	}

	ctx := context.Background()
	if _, err := eng.AddFact(ctx, "Dog", "IS_A", "mammal"); err != nil {
		t.Fatalf("AddFact failed: %v", err)
	}
}

func TestBuilder_Decay(t *testing.T) {
	ctx := context.Background()

	// With no decay a one-hop rule proof keeps full confidence.
	eng, err := symgo.Dense(256).Decay(1.0).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer eng.Close()

	err = eng.RegisterRule("flies",
		logic.NewStatement("IS_A", logic.Var("x"), logic.Lit("bird")),
		logic.NewStatement("CAN", logic.Var("x"), logic.Lit("fly")))
	if err != nil {
		t.Fatalf("RegisterRule failed: %v", err)
	}
	if _, err := eng.AddFact(ctx, "Tweety", "IS_A", "bird"); err != nil {
		t.Fatalf("AddFact failed: %v", err)
	}

	res, err := eng.ProveString(ctx, "CAN(Tweety, fly)")
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	if !res.Proven {
		t.Fatal("expected proof to succeed")
	}
	if res.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0 with decay 1.0, got %v", res.Confidence)
	}
}

func TestBuilder_Journal(t *testing.T) {
	dir := t.TempDir()

	eng, err := symgo.Dense(256).
		Journal(dir).
		SnapshotPath(filepath.Join(dir, "state.snap")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ctx := context.Background()
	if _, err := eng.AddFact(ctx, "Dog", "IS_A", "mammal"); err != nil {
		t.Fatalf("AddFact failed: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestBuilder_Immutable(t *testing.T) {
	base := symgo.Dense(256)
	derived := base.Seed(99)

	a, err := base.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer a.Close()

	b, err := derived.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer b.Close()

	if a.Space().Seed() == b.Space().Seed() {
		t.Error("deriving a builder must not mutate its parent")
	}
	if got := b.Space().Seed(); got != 99 {
		t.Errorf("expected seed 99, got %d", got)
	}
}

func TestBuilder_MustBuild_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustBuild to panic on invalid geometry")
		}
	}()

	_ = symgo.Dense(0).MustBuild()
}
