package scoring

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/guidesignal/guidematch/internal/embed"
)

// twoBlobs builds n well-separated unit vectors, half near each axis.
func twoBlobs(n int) [][]float64 {
	rng := rand.New(rand.NewSource(7))
	vecs := make([][]float64, n)
	for i := range vecs {
		v := []float64{rng.Float64() * 0.1, rng.Float64() * 0.1}
		if i%2 == 0 {
			v[0] += 1
		} else {
			v[1] += 1
		}
		vecs[i] = embed.NormalizeRow(v)
	}
	return vecs
}

func TestClusterJobs_TooFewJobs(t *testing.T) {
	for _, n := range []int{0, 1} {
		vecs := twoBlobs(n)
		c := ClusterJobs(vecs)
		if c.Enabled {
			t.Errorf("n=%d: clustering should be disabled", n)
		}
		if len(c.Assignments) != n {
			t.Errorf("n=%d: want %d zero assignments, got %d", n, n, len(c.Assignments))
		}
		if _, sim := c.Nearest([]float64{1, 0}); sim != 0 {
			t.Errorf("disabled clusters should report zero similarity, got %v", sim)
		}
		if b := c.Boost(0, 0, 0.9); b != 0 {
			t.Errorf("disabled clusters should boost zero, got %v", b)
		}
	}
}

func TestClusterJobs_Deterministic(t *testing.T) {
	vecs := twoBlobs(12)
	a := ClusterJobs(vecs)
	b := ClusterJobs(vecs)
	if !reflect.DeepEqual(a.Assignments, b.Assignments) {
		t.Errorf("same input must cluster identically: %v vs %v", a.Assignments, b.Assignments)
	}
}

func TestClusterJobs_SeparatesBlobs(t *testing.T) {
	// 6 points keep k at 2, so the two blobs map onto the two clusters.
	vecs := twoBlobs(6)
	c := ClusterJobs(vecs)
	if !c.Enabled {
		t.Fatal("expected clustering to run")
	}

	// All even-index points near axis 0 should share one cluster,
	// odd-index points another.
	evenCluster := c.Assignments[0]
	oddCluster := c.Assignments[1]
	for i, a := range c.Assignments {
		if i%2 == 0 && a != evenCluster {
			t.Errorf("point %d assigned %d, want %d", i, a, evenCluster)
		}
		if i%2 == 1 && a != oddCluster {
			t.Errorf("point %d assigned %d, want %d", i, a, oddCluster)
		}
	}
	if evenCluster == oddCluster {
		t.Error("separated blobs collapsed into one cluster")
	}
}

func TestClusterCount(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{4, 2},
		{9, 3},
		{100, 10},
	}
	for _, tt := range tests {
		c := ClusterJobs(twoBlobs(tt.n))
		if len(c.Centers) != tt.want {
			t.Errorf("n=%d: got %d clusters, want %d", tt.n, len(c.Centers), tt.want)
		}
	}
}

func TestClusterBoost(t *testing.T) {
	c := Clusters{
		Enabled:     true,
		Assignments: []int{0, 1},
		Centers:     [][]float64{{1, 0}, {0, 1}},
	}

	// Same cluster: fraction of similarity, capped at 0.05.
	if got := c.Boost(0, 0, 0.8); math.Abs(got-0.04) > 1e-9 {
		t.Errorf("Boost = %v, want 0.04", got)
	}
	if got := c.Boost(0, 0, 2.0); got != 0.05 {
		t.Errorf("Boost should cap at 0.05, got %v", got)
	}

	// Different cluster: nothing.
	if got := c.Boost(1, 0, 0.9); got != 0 {
		t.Errorf("cross-cluster boost should be 0, got %v", got)
	}
}

func TestNearest(t *testing.T) {
	c := Clusters{
		Enabled:     true,
		Assignments: []int{0, 1},
		Centers:     [][]float64{{1, 0}, {0, 1}},
	}
	cluster, sim := c.Nearest([]float64{0.9, 0.1})
	if cluster != 0 {
		t.Errorf("nearest cluster = %d, want 0", cluster)
	}
	if sim <= 0 {
		t.Errorf("similarity should be positive, got %v", sim)
	}
}
