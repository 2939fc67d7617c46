package plan

import (
	"testing"
)

func step(id string, deps ...string) Step {
	return Step{ID: id, Name: id, Agent: "backend", DependsOn: deps}
}

func TestBuildGraph(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		wantErr bool
	}{
		{
			name:  "linear chain",
			steps: []Step{step("a"), step("b", "a"), step("c", "b")},
		},
		{
			name:  "no dependencies",
			steps: []Step{step("a"), step("b"), step("c")},
		},
		{
			name:    "empty id",
			steps:   []Step{step("")},
			wantErr: true,
		},
		{
			name:    "duplicate id",
			steps:   []Step{step("a"), step("a")},
			wantErr: true,
		},
		{
			name:    "dependency on undeclared step",
			steps:   []Step{step("a", "ghost")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildGraph(tt.steps)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Len() != len(tt.steps) {
				t.Errorf("Len() = %d, want %d", g.Len(), len(tt.steps))
			}
		})
	}
}

func TestBuildGraphWiresReverseEdges(t *testing.T) {
	g, err := BuildGraph([]Step{step("a"), step("b", "a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := g.Node("b").Dependencies["a"]; !ok {
		t.Error("b should depend on a")
	}
	if _, ok := g.Node("a").Dependents["b"]; !ok {
		t.Error("a should list b as a dependent")
	}
}

func TestReadySteps(t *testing.T) {
	g, err := BuildGraph([]Step{
		step("setup"),
		step("api", "setup"),
		step("ui", "setup"),
		step("deploy", "api", "ui"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		completed map[string]bool
		want      []string
	}{
		{
			name:      "nothing completed",
			completed: map[string]bool{},
			want:      []string{"setup"},
		},
		{
			name:      "root done unlocks both branches",
			completed: map[string]bool{"setup": true},
			want:      []string{"api", "ui"},
		},
		{
			name:      "one branch done is not enough",
			completed: map[string]bool{"setup": true, "api": true},
			want:      []string{"ui"},
		},
		{
			name:      "both branches done unlocks deploy",
			completed: map[string]bool{"setup": true, "api": true, "ui": true},
			want:      []string{"deploy"},
		},
		{
			name:      "everything done",
			completed: map[string]bool{"setup": true, "api": true, "ui": true, "deploy": true},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.ReadySteps(tt.completed)
			if len(got) != len(tt.want) {
				t.Fatalf("ReadySteps() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ReadySteps()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetectCycle(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		g, err := BuildGraph([]Step{step("a"), step("b", "a"), step("c", "a", "b")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cycle := g.DetectCycle(); cycle != nil {
			t.Errorf("DetectCycle() = %v, want nil", cycle)
		}
	})

	t.Run("two-step cycle", func(t *testing.T) {
		g, err := BuildGraph([]Step{step("a", "b"), step("b", "a")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cycle := g.DetectCycle()
		if len(cycle) != 2 {
			t.Fatalf("DetectCycle() = %v, want 2 steps", cycle)
		}
	})

	t.Run("cycle behind a valid prefix", func(t *testing.T) {
		g, err := BuildGraph([]Step{
			step("setup"),
			step("a", "setup", "c"),
			step("b", "a"),
			step("c", "b"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cycle := g.DetectCycle()
		if len(cycle) != 3 {
			t.Fatalf("DetectCycle() = %v, want 3 steps", cycle)
		}
		seen := make(map[string]bool, len(cycle))
		for _, id := range cycle {
			seen[id] = true
		}
		for _, id := range []string{"a", "b", "c"} {
			if !seen[id] {
				t.Errorf("cycle %v missing step %s", cycle, id)
			}
		}
	})
}
