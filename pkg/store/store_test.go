package store

import(
	"database/sql"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/fishflow/pkg/fishflow"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(frame int) fishflow.Result {
	density := image.NewGray(image.Rect(0, 0, 40, 20))
	for y:=0; y<20; y++ {
		for x:=20; x<40; x++ {
			density.Pix[y*density.Stride + x] = 200
		}
	}

	vf := fishflow.NewVelocityField(4, 2)
	mask := fishflow.NewMask(4, 2)
	for n := range vf.V {
		vf.V[n] = fishflow.Vec2{X: float64(n), Y: -0.5 * float64(frame)}
		vf.Solved[n] = n != 3
		mask.Valid[n] = n%2 == 0
	}

	return fishflow.Result{
		Frame:     frame,
		Original:  density,
		Density:   density,
		Mask:      mask,
		Velocity:  vf,
		Alignment: fishflow.NoAlignment{}.Align(nil, nil),
	}
}

func testConfig() fishflow.Config {
	cfg := fishflow.NewConfig()
	cfg.Input.Path = "/data/run1"
	cfg.Output.Width = 4
	cfg.Output.Height = 2
	return cfg
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "/data/run1.sqlite", DefaultPath("/data/run1/"))
	assert.Equal(t, "/data/school.sqlite", DefaultPath("/data/school.avi"))
}

func TestWriteAndReadBack(t *testing.T) {
	s := openTestStore(t)
	run, err := s.NewRun(testConfig(), image.Rect(10, 10, 50, 30))
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	for frame:=0; frame<3; frame++ {
		require.NoError(t, s.WriteResult(run, testResult(frame), frame+1, time.Now()))
	}

	n, err := s.FrameCount(run)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	vf, mask, err := s.FrameVelocity(run, 2)
	require.NoError(t, err)
	want := testResult(2)
	assert.Equal(t, want.Velocity, vf)
	assert.Equal(t, want.Mask, mask)

	_, _, err = s.FrameVelocity(run, 7)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCellDensity(t *testing.T) {
	s := openTestStore(t)
	run, err := s.NewRun(testConfig(), image.Rect(0, 0, 40, 20))
	require.NoError(t, err)
	require.NoError(t, s.WriteResult(run, testResult(0), 1, time.Now()))

	var left, right int
	require.NoError(t, s.db.QueryRow(`SELECT density FROM cells WHERE run_id = ? AND grid_row = 0 AND grid_col = 0`,
		run.ID).Scan(&left))
	require.NoError(t, s.db.QueryRow(`SELECT density FROM cells WHERE run_id = ? AND grid_row = 1 AND grid_col = 3`,
		run.ID).Scan(&right))
	assert.Equal(t, 0, left)
	assert.Equal(t, 200, right)
}

func TestWriteRejectsWrongGrid(t *testing.T) {
	s := openTestStore(t)
	cfg := testConfig()
	cfg.Output.Width = 8
	run, err := s.NewRun(cfg, image.Rect(0, 0, 40, 20))
	require.NoError(t, err)

	err = s.WriteResult(run, testResult(0), 1, time.Now())
	assert.ErrorIs(t, err, fishflow.ErrDimensionMismatch)

	n, err := s.FrameCount(run)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDuplicateFrameRollsBack(t *testing.T) {
	s := openTestStore(t)
	run, err := s.NewRun(testConfig(), image.Rect(0, 0, 40, 20))
	require.NoError(t, err)

	require.NoError(t, s.WriteResult(run, testResult(0), 1, time.Now()))
	assert.Error(t, s.WriteResult(run, testResult(0), 1, time.Now()))

	var cells int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM cells WHERE run_id = ?`, run.ID).Scan(&cells))
	assert.Equal(t, 8, cells)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.sqlite")
	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.NewRun(testConfig(), image.Rect(0, 0, 40, 20))
	require.NoError(t, err)
	require.NoError(t, s.WriteResult(run, testResult(0), 1, time.Now()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	vf, _, err := s.FrameVelocity(run, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, vf.At(0, 3).X)
}
