package store

import(
	"database/sql"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abworrall/fishflow/pkg/emath"
	"github.com/abworrall/fishflow/pkg/fishflow"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	created_ns  INTEGER NOT NULL,
	input       TEXT NOT NULL,
	grid_nx     INTEGER NOT NULL,
	grid_ny     INTEGER NOT NULL,
	crop_xmin   INTEGER NOT NULL,
	crop_ymin   INTEGER NOT NULL,
	crop_xmax   INTEGER NOT NULL,
	crop_ymax   INTEGER NOT NULL,
	scale       REAL NOT NULL,
	window_size INTEGER NOT NULL,
	config      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS frames (
	run_id      TEXT NOT NULL REFERENCES runs(run_id),
	frame       INTEGER NOT NULL,
	frame_index INTEGER NOT NULL,
	time_ns     INTEGER NOT NULL,
	alignment   TEXT NOT NULL,
	PRIMARY KEY (run_id, frame)
);

CREATE TABLE IF NOT EXISTS cells (
	run_id      TEXT NOT NULL REFERENCES runs(run_id),
	frame       INTEGER NOT NULL,
	grid_row    INTEGER NOT NULL,
	grid_col    INTEGER NOT NULL,
	vx          REAL NOT NULL,
	vy          REAL NOT NULL,
	solved      INTEGER NOT NULL,
	density     INTEGER NOT NULL,
	valid       INTEGER NOT NULL,
	PRIMARY KEY (run_id, frame, grid_row, grid_col)
);
`

// A Store keeps per-cell results in a SQLite file, one row per grid
// cell per frame.
type Store struct {
	db *sql.DB
}

// DefaultPath puts the database next to the input, with a .sqlite
// extension.
func DefaultPath(input string) string {
	input = strings.TrimRight(input, string(filepath.Separator))
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".sqlite"
}

// Open opens (or creates) the database at path and makes sure the
// tables exist.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store '%s': %w", path, err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("open store '%s': %q: %w", path, pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store '%s': schema: %w", path, err)
	}

	return &Store{db: db}, nil
}

func (s *Store)Close() error { return s.db.Close() }

// A Run is one pass over an input; frames are written against it.
type Run struct {
	ID     string
	Nx, Ny int
}

// NewRun records the settings of a run. cfg should be finalized.
func (s *Store)NewRun(cfg fishflow.Config, crop image.Rectangle) (Run, error) {
	r := Run{ID: uuid.New().String(), Nx: cfg.Output.Width, Ny: cfg.Output.Height}

	_, err := s.db.Exec(`
		INSERT INTO runs (run_id, created_ns, input, grid_nx, grid_ny,
			crop_xmin, crop_ymin, crop_xmax, crop_ymax, scale, window_size, config)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, time.Now().UnixNano(), cfg.Input.Path, r.Nx, r.Ny,
		crop.Min.X, crop.Min.Y, crop.Max.X, crop.Max.Y,
		cfg.Calc.Scale, cfg.Calc.WindowSize, cfg.AsYaml(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WriteResult stores one frame's results in a single transaction. The
// density of a cell is the density map resized down to the grid.
func (s *Store)WriteResult(run Run, res fishflow.Result, frameIndex int, when time.Time) (err error) {
	vf := res.Velocity
	if vf.Nx != run.Nx || vf.Ny != run.Ny || res.Mask.Nx != run.Nx || res.Mask.Ny != run.Ny {
		return fmt.Errorf("write frame %d: grid %dx%d, run is %dx%d: %w", res.Frame, vf.Nx, vf.Ny, run.Nx, run.Ny,
			fishflow.ErrDimensionMismatch)
	}
	density := emath.ResizeBilinear(res.Density, run.Nx, run.Ny)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("write frame %d: begin: %w", res.Frame, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`INSERT INTO frames (run_id, frame, frame_index, time_ns, alignment) VALUES (?, ?, ?, ?, ?)`,
		run.ID, res.Frame, frameIndex, when.UnixNano(), res.Alignment.String()); err != nil {
		return fmt.Errorf("write frame %d: %w", res.Frame, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO cells (run_id, frame, grid_row, grid_col, vx, vy, solved, density, valid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("write frame %d: prepare: %w", res.Frame, err)
	}
	defer stmt.Close()

	for i:=0; i<run.Ny; i++ {
		for j:=0; j<run.Nx; j++ {
			n := i*run.Nx + j
			v := vf.V[n]
			if _, err = stmt.Exec(run.ID, res.Frame, i, j, v.X, v.Y, boolInt(vf.Solved[n]),
				int(density.Pix[i*density.Stride + j]), boolInt(res.Mask.Valid[n])); err != nil {
				return fmt.Errorf("write frame %d cell %d,%d: %w", res.Frame, i, j, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("write frame %d: commit: %w", res.Frame, err)
	}
	return nil
}

// FrameVelocity reads back the velocity field and mask of one frame.
func (s *Store)FrameVelocity(run Run, frame int) (fishflow.VelocityField, fishflow.Mask, error) {
	vf := fishflow.NewVelocityField(run.Nx, run.Ny)
	mask := fishflow.NewMask(run.Nx, run.Ny)

	rows, err := s.db.Query(`
		SELECT grid_row, grid_col, vx, vy, solved, valid FROM cells
		WHERE run_id = ? AND frame = ?`, run.ID, frame)
	if err != nil {
		return vf, mask, fmt.Errorf("read frame %d: %w", frame, err)
	}
	defer rows.Close()

	found := 0
	for rows.Next() {
		var i, j, solved, valid int
		var v fishflow.Vec2
		if err := rows.Scan(&i, &j, &v.X, &v.Y, &solved, &valid); err != nil {
			return vf, mask, fmt.Errorf("scan frame %d: %w", frame, err)
		}
		if i < 0 || i >= run.Ny || j < 0 || j >= run.Nx {
			return vf, mask, fmt.Errorf("read frame %d: cell %d,%d outside grid: %w", frame, i, j,
				fishflow.ErrDimensionMismatch)
		}
		n := i*run.Nx + j
		vf.V[n] = v
		vf.Solved[n] = solved != 0
		mask.Valid[n] = valid != 0
		found++
	}
	if err := rows.Err(); err != nil {
		return vf, mask, fmt.Errorf("read frame %d: %w", frame, err)
	}
	if found == 0 {
		return vf, mask, fmt.Errorf("read frame %d: %w", frame, sql.ErrNoRows)
	}

	return vf, mask, nil
}

// FrameCount is the number of frames written for a run.
func (s *Store)FrameCount(run Run) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM frames WHERE run_id = ?`, run.ID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	return n, nil
}
