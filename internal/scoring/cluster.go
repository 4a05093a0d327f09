package scoring

import (
	"math"
	"math/rand"

	"github.com/guidesignal/guidematch/internal/embed"
)

const (
	// clusterSeed fixes the k-means RNG so identical inputs cluster
	// identically across runs.
	clusterSeed = 42

	clusterRestarts = 10
	clusterMaxIter  = 300

	minClusters = 2
	maxClusters = 20

	// clusterBoostCap bounds the same-cluster affinity bonus.
	clusterBoostCap = 0.05
)

// Clusters holds the k-means grouping of the current job batch.
type Clusters struct {
	// Enabled is false when fewer than 2 jobs exist; all boosts are then
	// neutral zero.
	Enabled bool

	// Assignments maps each job index to its cluster id.
	Assignments []int

	// Centers are the cluster centroids in embedding space.
	Centers [][]float64
}

// ClusterJobs groups the job batch by embedding with
// k = clamp(round(sqrt(n)), 2, 20). With fewer than 2 jobs clustering is
// skipped entirely and a disabled grouping is returned.
func ClusterJobs(jobVecs [][]float64) Clusters {
	n := len(jobVecs)
	if n < 2 {
		return Clusters{Assignments: make([]int, n)}
	}

	k := int(math.Round(math.Sqrt(float64(n))))
	if k < minClusters {
		k = minClusters
	}
	if k > maxClusters {
		k = maxClusters
	}
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(clusterSeed))

	best := kmeansResult{sse: math.Inf(1)}
	for r := 0; r < clusterRestarts; r++ {
		res := kmeans(jobVecs, k, rng)
		if res.sse < best.sse {
			best = res
		}
	}

	return Clusters{
		Enabled:     true,
		Assignments: best.assignments,
		Centers:     best.centers,
	}
}

// Nearest returns the cluster whose center is most cosine-similar to the
// candidate vector, along with that similarity. The similarity is recorded
// as the cluster distance and feeds the boost uninverted, so more similar
// candidates get a larger boost.
func (c Clusters) Nearest(candidateVec []float64) (cluster int, similarity float64) {
	if !c.Enabled {
		return 0, 0
	}
	cluster = 0
	similarity = math.Inf(-1)
	for i, center := range c.Centers {
		if sim := embed.Cosine(candidateVec, center); sim > similarity {
			similarity = sim
			cluster = i
		}
	}
	return cluster, similarity
}

// Boost returns the affinity bonus for a pair: capped fraction of the
// candidate's nearest-cluster similarity when the job belongs to that
// cluster, else zero.
func (c Clusters) Boost(jobIndex, nearestCluster int, clusterDistance float64) float64 {
	if !c.Enabled {
		return 0
	}
	if c.Assignments[jobIndex] != nearestCluster {
		return 0
	}
	return math.Min(clusterBoostCap, clusterDistance*clusterBoostCap)
}

type kmeansResult struct {
	assignments []int
	centers     [][]float64
	sse         float64
}

// kmeans is Lloyd's algorithm with random initial centers drawn from the
// data. Empty clusters are reseeded with the point farthest from its
// center.
func kmeans(points [][]float64, k int, rng *rand.Rand) kmeansResult {
	n := len(points)
	dim := len(points[0])

	centers := make([][]float64, k)
	for i, idx := range rng.Perm(n)[:k] {
		centers[i] = append([]float64(nil), points[idx]...)
	}

	assignments := make([]int, n)
	counts := make([]int, k)

	for iter := 0; iter < clusterMaxIter; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCenter(p, centers)
			if assignments[i] != best || iter == 0 {
				if assignments[i] != best {
					changed = true
				}
				assignments[i] = best
			}
		}
		if iter > 0 && !changed {
			break
		}

		for c := range centers {
			for d := 0; d < dim; d++ {
				centers[c][d] = 0
			}
			counts[c] = 0
		}
		for i, p := range points {
			c := assignments[i]
			counts[c]++
			for d, v := range p {
				centers[c][d] += v
			}
		}
		for c := range centers {
			if counts[c] == 0 {
				far := farthestPoint(points, centers, assignments)
				copy(centers[c], points[far])
				assignments[far] = c
				counts[c] = 1
				continue
			}
			for d := range centers[c] {
				centers[c][d] /= float64(counts[c])
			}
		}
	}

	var sse float64
	for i, p := range points {
		sse += sqDist(p, centers[assignments[i]])
	}
	return kmeansResult{assignments: assignments, centers: centers, sse: sse}
}

func nearestCenter(p []float64, centers [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, center := range centers {
		if d := sqDist(p, center); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func farthestPoint(points, centers [][]float64, assignments []int) int {
	far := 0
	farDist := -1.0
	for i, p := range points {
		if d := sqDist(p, centers[assignments[i]]); d > farDist {
			farDist = d
			far = i
		}
	}
	return far
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
