package comat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/comat/resource"
	"github.com/hupe1980/comat/testutil"
)

func randomGrid(rng *testutil.RNG, shape []int, levels int, density float64) Grid[int32] {
	size := 1
	for _, e := range shape {
		size *= e
	}
	return Grid[int32]{
		Labels: rng.Labels(size, levels),
		Mask:   rng.Mask(size, density),
		Shape:  shape,
		Levels: levels,
	}
}

func randomOffset(rng *testutil.RNG, rank int) []int {
	off := make([]int, rank)
	for a := range off {
		off[a] = rng.Intn(5) - 2
	}
	return off
}

func reference(p, s Grid[int32], offset []int) []uint64 {
	return testutil.Reference(p.Labels, p.Mask, p.Shape, s.Labels, s.Mask, s.Shape, offset, p.Levels, s.Levels)
}

func TestCompute_ThreeByThree(t *testing.T) {
	g := Grid[int32]{
		Labels: []int32{
			0, 1, 2,
			1, 2, 0,
			2, 0, 1,
		},
		Mask:   testutil.Ones(9),
		Shape:  []int{3, 3},
		Levels: 3,
	}
	h, err := NewHistogram(3, 3)
	require.NoError(t, err)

	metrics := &BasicMetricsCollector{}
	err = Compute(context.Background(), g, []int{0, 1}, h.Counts, WithMetricsCollector(metrics))
	require.NoError(t, err)

	assert.Equal(t, uint64(2), h.At(0, 1))
	assert.Equal(t, uint64(2), h.At(1, 2))
	assert.Equal(t, uint64(2), h.At(2, 0))
	assert.Equal(t, uint64(6), h.Total())

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ComputeCount)
	assert.Equal(t, Stats{Eligible: 9, Outside: 3, Counted: 6}, stats.Totals)
}

func TestCompute_ZeroOffsetDiagonal(t *testing.T) {
	rng := testutil.NewRNG(1)
	g := randomGrid(rng, []int{5, 4, 6}, 7, 0.6)

	out := make([]uint64, 49)
	require.NoError(t, Compute(context.Background(), g, []int{0, 0, 0}, out))

	want := make([]uint64, 7)
	for k, l := range g.Labels {
		if g.Mask[k] == 1 {
			want[l]++
		}
	}
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			if i == j {
				assert.Equal(t, want[i], out[i*7+j], "diagonal %d", i)
			} else {
				assert.Zero(t, out[i*7+j], "cell (%d,%d)", i, j)
			}
		}
	}
}

func TestCompute_MaskExclusion(t *testing.T) {
	rng := testutil.NewRNG(2)
	g := randomGrid(rng, []int{8, 8}, 4, 0)

	for _, off := range [][]int{{0, 0}, {1, 0}, {-3, 2}} {
		out := make([]uint64, 16)
		require.NoError(t, Compute(context.Background(), g, off, out))
		assert.Equal(t, make([]uint64, 16), out, "offset %v", off)
	}
}

func TestCompute_LevelClamp(t *testing.T) {
	rng := testutil.NewRNG(3)
	base := randomGrid(rng, []int{6, 7}, 5, 1)
	offset := []int{1, -1}

	for _, bad := range []int32{5, 100, -1} {
		for _, k := range []int{0, 9, 20, 41} {
			injected := base
			injected.Labels = append([]int32(nil), base.Labels...)
			injected.Labels[k] = bad

			masked := base
			masked.Mask = append([]uint8(nil), base.Mask...)
			masked.Mask[k] = 0

			a := make([]uint64, 25)
			b := make([]uint64, 25)
			require.NoError(t, Compute(context.Background(), injected, offset, a))
			require.NoError(t, Compute(context.Background(), masked, offset, b))
			assert.Equal(t, b, a, "label %d at %d", bad, k)
		}
	}
}

func TestComputePair_SelfEquivalence(t *testing.T) {
	rng := testutil.NewRNG(4)
	for rank := 1; rank <= 4; rank++ {
		shape := make([]int, rank)
		for a := range shape {
			shape[a] = 2 + rng.Intn(4)
		}
		g := randomGrid(rng, shape, 4, 0.8)
		offset := randomOffset(rng, rank)

		single := make([]uint64, 16)
		pair := make([]uint64, 16)
		require.NoError(t, Compute(context.Background(), g, offset, single))
		require.NoError(t, ComputePair(context.Background(), g, g, offset, pair))
		assert.Equal(t, single, pair, "rank %d offset %v", rank, offset)
	}
}

func TestCompute_DimensionalReduction(t *testing.T) {
	rng := testutil.NewRNG(5)
	flat := randomGrid(rng, []int{5, 6}, 3, 0.7)

	lifted := flat
	lifted.Shape = []int{5, 1, 6}

	for _, off := range [][]int{{0, 1}, {1, 1}, {-2, 0}, {0, 0}} {
		want := make([]uint64, 9)
		require.NoError(t, Compute(context.Background(), flat, off, want))

		got := make([]uint64, 9)
		require.NoError(t, Compute(context.Background(), lifted, []int{off[0], 0, off[1]}, got))
		assert.Equal(t, want, got, "offset %v", off)

		// A non-zero component along the unit axis leaves no valid pair.
		none := make([]uint64, 9)
		require.NoError(t, Compute(context.Background(), lifted, []int{off[0], 1, off[1]}, none))
		assert.Equal(t, make([]uint64, 9), none)
	}
}

func TestCompute_MatchesReference(t *testing.T) {
	rng := testutil.NewRNG(6)
	variants := []struct {
		name string
		opts []Option
	}{
		{"serial", nil},
		{"workers", []Option{WithWorkers(3)}},
		{"sparse", []Option{WithSparseMasks(1)}},
		{"sparse workers", []Option{WithSparseMasks(1), WithWorkers(4), WithCheckInterval(7)}},
	}

	for rank := 1; rank <= 4; rank++ {
		shape := make([]int, rank)
		for a := range shape {
			shape[a] = 1 + rng.Intn(6)
		}
		g := randomGrid(rng, shape, 6, 0.5)
		offset := randomOffset(rng, rank)
		want := reference(g, g, offset)

		for _, v := range variants {
			t.Run(fmt.Sprintf("rank%d/%s", rank, v.name), func(t *testing.T) {
				got := make([]uint64, 36)
				require.NoError(t, Compute(context.Background(), g, offset, got, v.opts...))
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestComputePair_DifferentShapes(t *testing.T) {
	rng := testutil.NewRNG(7)
	primary := randomGrid(rng, []int{6, 4, 3}, 3, 0.9)
	secondary := randomGrid(rng, []int{4, 7, 2}, 5, 0.9)

	variants := []struct {
		name string
		opts []Option
	}{
		{"serial", []Option{WithWorkers(1)}},
		{"parallel", []Option{WithWorkers(5)}},
		{"sparse", []Option{WithSparseMasks(1), WithWorkers(1)}},
		{"sparse parallel", []Option{WithSparseMasks(1), WithWorkers(3)}},
	}

	for _, off := range [][]int{{0, 0, 0}, {-1, 2, 1}, {2, -1, 0}} {
		want := reference(primary, secondary, off)
		for _, v := range variants {
			got := make([]uint64, 15)
			require.NoError(t, ComputePair(context.Background(), primary, secondary, off, got, v.opts...))
			assert.Equal(t, want, got, "offset %v %s", off, v.name)
		}
	}
}

func TestComputePair_UsesSecondaryMask(t *testing.T) {
	primary := Grid[int32]{Labels: []int32{0, 0, 0}, Mask: testutil.Ones(3), Shape: []int{3}, Levels: 1}
	secondary := Grid[int32]{Labels: []int32{1, 1, 1}, Mask: []uint8{1, 0, 1}, Shape: []int{3}, Levels: 2}

	out := make([]uint64, 2)
	require.NoError(t, ComputePair(context.Background(), primary, secondary, []int{0}, out))
	assert.Equal(t, []uint64{0, 2}, out)
}

func TestCompute_Accumulates(t *testing.T) {
	rng := testutil.NewRNG(8)
	g := randomGrid(rng, []int{10, 10}, 4, 0.8)

	once := make([]uint64, 16)
	require.NoError(t, Compute(context.Background(), g, []int{1, 0}, once))

	twice := make([]uint64, 16)
	require.NoError(t, Compute(context.Background(), g, []int{1, 0}, twice))
	require.NoError(t, Compute(context.Background(), g, []int{1, 0}, twice))

	for k := range once {
		assert.Equal(t, 2*once[k], twice[k])
	}
}

func TestComputeMulti(t *testing.T) {
	rng := testutil.NewRNG(9)
	g := randomGrid(rng, []int{9, 7}, 5, 0.6)
	offsets := [][]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}}

	want := make([]uint64, 25)
	for _, off := range offsets {
		require.NoError(t, Compute(context.Background(), g, off, want))
	}

	for _, opts := range [][]Option{nil, {WithWorkers(3)}, {WithSparseMasks(0.9)}} {
		got := make([]uint64, 25)
		require.NoError(t, ComputeMulti(context.Background(), g, offsets, got, opts...))
		assert.Equal(t, want, got)
	}
}

func TestComputePairMulti(t *testing.T) {
	rng := testutil.NewRNG(10)
	a := randomGrid(rng, []int{5, 5}, 3, 0.7)
	b := randomGrid(rng, []int{5, 5}, 4, 0.7)
	offsets := [][]int{{0, 0}, {0, 2}}

	want := make([]uint64, 12)
	for _, off := range offsets {
		require.NoError(t, ComputePair(context.Background(), a, b, off, want))
	}

	got := make([]uint64, 12)
	require.NoError(t, ComputePairMulti(context.Background(), a, b, offsets, got, WithWorkers(2)))
	assert.Equal(t, want, got)
}

func TestCompute_SmallLabelTypes(t *testing.T) {
	g := Grid[uint8]{
		Labels: []uint8{0, 1, 2, 1, 2, 0, 2, 0, 1},
		Mask:   testutil.Ones(9),
		Shape:  []int{3, 3},
		Levels: 3,
	}
	out := make([]uint64, 9)
	require.NoError(t, Compute(context.Background(), g, []int{0, 1}, out))
	assert.Equal(t, []uint64{0, 2, 0, 0, 0, 2, 2, 0, 0}, out)
}

func TestCompute_InvalidInput(t *testing.T) {
	valid := func() Grid[int32] {
		return Grid[int32]{Labels: make([]int32, 6), Mask: testutil.Ones(6), Shape: []int{2, 3}, Levels: 2}
	}

	tests := []struct {
		name      string
		primary   func() Grid[int32]
		secondary func() Grid[int32]
		offsets   [][]int
		out       int
		want      error
	}{
		{
			name:    "zero extent",
			primary: func() Grid[int32] { g := valid(); g.Shape = []int{0, 3}; return g },
			offsets: [][]int{{0, 1}}, out: 4, want: ErrInvalidShape,
		},
		{
			name:    "negative extent",
			primary: func() Grid[int32] { g := valid(); g.Shape = []int{2, -3}; return g },
			offsets: [][]int{{0, 1}}, out: 4, want: ErrInvalidShape,
		},
		{
			name:    "empty shape",
			primary: func() Grid[int32] { g := valid(); g.Shape = nil; return g },
			offsets: [][]int{{}}, out: 4, want: ErrInvalidShape,
		},
		{
			name:    "labels length",
			primary: func() Grid[int32] { g := valid(); g.Labels = g.Labels[:5]; return g },
			offsets: [][]int{{0, 1}}, out: 4, want: ErrInvalidShape,
		},
		{
			name:    "mask length",
			primary: func() Grid[int32] { g := valid(); g.Mask = append(g.Mask, 1); return g },
			offsets: [][]int{{0, 1}}, out: 4, want: ErrInvalidShape,
		},
		{
			name:    "output length",
			primary: valid,
			offsets: [][]int{{0, 1}}, out: 5, want: ErrInvalidShape,
		},
		{
			name:    "offset too short",
			primary: valid,
			offsets: [][]int{{1}}, out: 4, want: ErrInvalidOffset,
		},
		{
			name:    "second offset too long",
			primary: valid,
			offsets: [][]int{{0, 1}, {0, 1, 2}}, out: 4, want: ErrInvalidOffset,
		},
		{
			name:    "no offsets",
			primary: valid,
			offsets: [][]int{}, out: 4, want: ErrInvalidOffset,
		},
		{
			name:    "zero levels",
			primary: func() Grid[int32] { g := valid(); g.Levels = 0; return g },
			offsets: [][]int{{0, 1}}, out: 0, want: ErrInvalidLevels,
		},
		{
			name:      "secondary levels",
			primary:   valid,
			secondary: func() Grid[int32] { g := valid(); g.Levels = -1; return g },
			offsets:   [][]int{{0, 1}}, out: 4, want: ErrInvalidLevels,
		},
		{
			name:    "rank mismatch",
			primary: valid,
			secondary: func() Grid[int32] {
				return Grid[int32]{Labels: make([]int32, 6), Mask: testutil.Ones(6), Shape: []int{6}, Levels: 2}
			},
			offsets: [][]int{{0, 1}}, out: 4, want: ErrInvalidShape,
		},
		{
			name:      "secondary zero extent",
			primary:   valid,
			secondary: func() Grid[int32] { g := valid(); g.Shape = []int{2, 0}; return g },
			offsets:   [][]int{{0, 1}}, out: 4, want: ErrInvalidShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]uint64, tt.out)
			for k := range out {
				out[k] = 7
			}
			snapshot := append([]uint64(nil), out...)

			var err error
			if tt.secondary == nil {
				err = ComputeMulti(context.Background(), tt.primary(), tt.offsets, out)
			} else {
				err = ComputePairMulti(context.Background(), tt.primary(), tt.secondary(), tt.offsets, out)
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, snapshot, out)
		})
	}
}

func TestCompute_ErrorDetails(t *testing.T) {
	g := Grid[int32]{Labels: make([]int32, 6), Mask: testutil.Ones(6), Shape: []int{2, 0, 3}, Levels: 2}
	err := Compute(context.Background(), g, []int{0, 0, 0}, make([]uint64, 4))

	var ee *ExtentError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "primary", ee.Grid)
	assert.Equal(t, 1, ee.Axis)
	assert.Equal(t, 0, ee.Extent)

	g.Shape = []int{2, 3}
	err = Compute(context.Background(), g, []int{0, 0, 0}, make([]uint64, 4))
	var oe *OffsetError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, 2, oe.Expected)
	assert.Equal(t, 3, oe.Actual)

	err = Compute(context.Background(), g, []int{0, 0}, make([]uint64, 3))
	var be *BufferSizeError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "output", be.Buffer)
	assert.Equal(t, 4, be.Expected)
}

func TestCompute_OutOfRangeFail(t *testing.T) {
	g := Grid[int32]{
		Labels: []int32{0, 1, 3, 1},
		Mask:   testutil.Ones(4),
		Shape:  []int{2, 2},
		Levels: 2,
	}
	out := make([]uint64, 4)

	err := Compute(context.Background(), g, []int{0, 1}, out, WithOutOfRangePolicy(OutOfRangeFail))
	require.ErrorIs(t, err, ErrLabelOutOfRange)

	var le *LabelRangeError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, []int{1, 0}, le.Coord)
	assert.Equal(t, 2, le.Index)
	assert.Equal(t, int64(3), le.Center)
	assert.Equal(t, int64(1), le.Neighbor)
	assert.Equal(t, make([]uint64, 4), out)

	// Drop (default) keeps going and counts the valid pair.
	require.NoError(t, Compute(context.Background(), g, []int{0, 1}, out))
	assert.Equal(t, []uint64{0, 1, 0, 0}, out)
}

func TestCompute_Canceled(t *testing.T) {
	rng := testutil.NewRNG(11)
	g := randomGrid(rng, []int{32, 32}, 4, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make([]uint64, 16)
	err := Compute(ctx, g, []int{0, 1}, out, WithWorkers(4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, make([]uint64, 16), out)
}

func TestCompute_ResourceController(t *testing.T) {
	rng := testutil.NewRNG(12)
	g := randomGrid(rng, []int{20, 20}, 4, 0.9)
	rc := resource.NewController(resource.Config{MaxWorkers: 1, MemoryLimitBytes: 16 * 8})

	want := reference(g, g, []int{1, 1})
	got := make([]uint64, 16)
	require.NoError(t, Compute(context.Background(), g, []int{1, 1}, got,
		WithWorkers(4), WithResourceController(rc)))

	assert.Equal(t, want, got)
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, int64(0), rc.ActiveWorkers())
}

func TestCompute_MemoryLimitBelowScratch(t *testing.T) {
	g := Grid[int32]{
		Labels: []int32{0, 1, 2, 3, 0, 1, 2, 3, 0},
		Mask:   testutil.Ones(9),
		Shape:  []int{3, 3},
		Levels: 4,
	}
	// One 4x4 scratch histogram needs 128 bytes.
	rc := resource.NewController(resource.Config{MaxWorkers: 1, MemoryLimitBytes: 64})
	metrics := &BasicMetricsCollector{}
	out := make([]uint64, 16)

	done := make(chan error, 1)
	go func() {
		done <- Compute(context.Background(), g, []int{0, 1}, out,
			WithResourceController(rc), WithMetricsCollector(metrics))
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, resource.ErrMemoryLimit)
	case <-time.After(2 * time.Second):
		t.Fatal("Compute blocked on a scratch reservation larger than the memory limit")
	}
	assert.Equal(t, make([]uint64, 16), out)
	assert.Equal(t, Stats{}, metrics.GetStats().Totals)
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, int64(0), rc.ActiveWorkers())
}

func TestCompute_ConcurrentCallsShareGrids(t *testing.T) {
	rng := testutil.NewRNG(13)
	g := randomGrid(rng, []int{16, 16}, 5, 0.8)
	offsets := [][]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}

	results := make([][]uint64, len(offsets))
	var wg sync.WaitGroup
	for k, off := range offsets {
		k, off := k, off
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := make([]uint64, 25)
			assert.NoError(t, Compute(context.Background(), g, off, out, WithWorkers(2)))
			results[k] = out
		}()
	}
	wg.Wait()

	for k, off := range offsets {
		assert.Equal(t, reference(g, g, off), results[k], "offset %v", off)
	}
}
