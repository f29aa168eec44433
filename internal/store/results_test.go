package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/testutil"
)

func testRun(id string) Run {
	return Run{
		ID:        id,
		Effectors: 2, Targets: 2,
		Quantity: 3, FirstIndex: 10,
		Solvers: []string{"AStar", "Greedy"},
	}
}

func TestWriteRun_AssignsSequence(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq1, err := s.WriteRun(ctx, testRun("run-a"))
	require.NoError(t, err)
	seq2, err := s.WriteRun(ctx, testRun("run-b"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq1)
	assert.Equal(t, int64(2), seq2)

	again, err := s.WriteRun(ctx, testRun("run-a"))
	require.NoError(t, err)
	assert.Equal(t, seq1, again, "rewriting a run keeps its sequence")

	run, err := s.ReadRun(ctx, "run-b")
	require.NoError(t, err)
	want := testRun("run-b")
	want.StartedSeq = 2
	assert.Equal(t, want, run)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteProblem_ContentAddressed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	p := testutil.DisjointPairs()

	id1, err := s.WriteProblem(ctx, "a.json", p)
	require.NoError(t, err)
	id2, err := s.WriteProblem(ctx, "b.json", p)
	require.NoError(t, err)
	assert.Equal(t, p.ID(), id1)
	assert.Equal(t, id1, id2)

	var (
		count    int
		filename string
		total    float64
	)
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*), MIN(filename), MIN(total_value) FROM problems`).
		Scan(&count, &filename, &total))
	assert.Equal(t, 1, count)
	assert.Equal(t, "a.json", filename)
	assert.Equal(t, 30.0, total)
}

func TestWriteResult_RoundTripAndIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, testRun("run"))
	require.NoError(t, err)
	pid, err := s.WriteProblem(ctx, "p.json", testutil.DisjointPairs())
	require.NoError(t, err)

	astar := Result{
		RunID: "run", ProblemID: pid, Solver: "AStar",
		Claimed: 18, Remaining: 12,
		Runtime:    3 * time.Millisecond,
		Expansions: 4, BranchFactor: 3, Duplicates: 1,
		Actions: []model.Action{{Effector: 0, Target: 0}, {Effector: 1, Target: 1}},
		Found:   true,
	}
	greedy := Result{
		RunID: "run", ProblemID: pid, Solver: "Greedy",
		Claimed: 18, Remaining: 12,
		Runtime: time.Microsecond,
		Actions: []model.Action{{Effector: 1, Target: 1}, {Effector: 0, Target: 0}},
		Found:   true,
	}
	require.NoError(t, s.WriteResult(ctx, astar))
	require.NoError(t, s.WriteResult(ctx, greedy))

	retried := astar
	retried.Claimed = 0
	require.NoError(t, s.WriteResult(ctx, retried), "duplicate result is ignored")

	results, err := s.ReadResults(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, []Result{astar, greedy}, results)
}

func TestWriteResult_EmptyActions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, testRun("run"))
	require.NoError(t, err)
	pid, err := s.WriteProblem(ctx, "p.json", testutil.NoOpportunity())
	require.NoError(t, err)

	require.NoError(t, s.WriteResult(ctx, Result{RunID: "run", ProblemID: pid, Solver: "UCS", Remaining: 10, Found: true}))

	results, err := s.ReadResults(ctx, "run")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotNil(t, results[0].Actions)
	assert.Empty(t, results[0].Actions)
}

func TestWriteResult_RequiresRun(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteResult(context.Background(), Result{RunID: "ghost", ProblemID: "none", Solver: "GA"})
	assert.Error(t, err)
}

func TestReadResults_Empty(t *testing.T) {
	s := createTestStore(t)
	results, err := s.ReadResults(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSummaries(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, testRun("run"))
	require.NoError(t, err)
	p1, err := s.WriteProblem(ctx, "1.json", testutil.DisjointPairs())
	require.NoError(t, err)
	p2, err := s.WriteProblem(ctx, "2.json", testutil.Contested())
	require.NoError(t, err)

	for _, r := range []Result{
		{RunID: "run", ProblemID: p1, Solver: "Greedy", Claimed: 18, Runtime: 2, Found: true},
		{RunID: "run", ProblemID: p1, Solver: "AStar", Claimed: 18, Runtime: 10, Found: true},
		{RunID: "run", ProblemID: p2, Solver: "Greedy", Claimed: 9.8, Runtime: 3, Found: true},
		{RunID: "run", ProblemID: p2, Solver: "AStar", Claimed: 0, Runtime: 20, Found: false},
	} {
		require.NoError(t, s.WriteResult(ctx, r))
	}

	sums, err := s.Summaries(ctx, "run")
	require.NoError(t, err)
	require.Len(t, sums, 2)

	assert.Equal(t, "Greedy", sums[0].Solver)
	assert.Equal(t, 2, sums[0].Problems)
	assert.InDelta(t, 27.8, sums[0].TotalClaimed, 1e-9)
	assert.InDelta(t, 13.9, sums[0].MeanClaimed, 1e-9)
	assert.Equal(t, time.Duration(5), sums[0].TotalRuntime)
	assert.Zero(t, sums[0].Failures)

	assert.Equal(t, "AStar", sums[1].Solver)
	assert.Equal(t, 1, sums[1].Failures)
	assert.Equal(t, time.Duration(30), sums[1].TotalRuntime)
}
