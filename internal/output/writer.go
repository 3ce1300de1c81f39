// Package output implements the §6 output files: end.out and
// reflect.out written unrolled, track.out and BF.out rolling over at a
// fixed row count, all as encoding/csv the way the teacher's
// storage.Store writes states.csv.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/DillonBusk/pentrack/internal/spatial"
)

const (
	trackRollover = 40000
	bfRollover    = 100000
)

// Writer owns the four output files (§6) for one run. Not safe for
// concurrent use from multiple goroutines without external
// synchronization — the driver's Pool serializes writes through a single
// Writer via the observer callbacks, matching §5's "log records for one
// particle are emitted in integration-time order" ordering guarantee when
// run sequentially, and is the caller's responsibility to serialize when
// run in parallel.
type Writer struct {
	dir string

	end     *rollingFile
	reflect *rollingFile
	track   *rollingFile
	bloch   *rollingFile

	lastErr error
}

// rollingFile is one logical output stream that may be split across
// several files once a row cap is reached.
type rollingFile struct {
	dir       string
	baseName  string
	header    []string
	rollAfter int // 0 means never roll

	f       *os.File
	w       *csv.Writer
	rows    int
	fileIdx int
}

func newRollingFile(dir, baseName string, header []string, rollAfter int) *rollingFile {
	return &rollingFile{dir: dir, baseName: baseName, header: header, rollAfter: rollAfter}
}

func (r *rollingFile) open() error {
	name := r.baseName
	if r.fileIdx > 0 {
		ext := filepath.Ext(r.baseName)
		stem := r.baseName[:len(r.baseName)-len(ext)]
		name = fmt.Sprintf("%s.%03d%s", stem, r.fileIdx+1, ext)
	}
	f, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return err
	}
	r.f = f
	r.w = csv.NewWriter(f)
	r.rows = 0
	if len(r.header) > 0 {
		if err := r.w.Write(r.header); err != nil {
			return err
		}
	}
	return nil
}

func (r *rollingFile) writeRow(row []string) error {
	if r.f == nil {
		if err := r.open(); err != nil {
			return err
		}
	}
	if r.rollAfter > 0 && r.rows >= r.rollAfter {
		r.w.Flush()
		if err := r.w.Error(); err != nil {
			return err
		}
		if err := r.f.Close(); err != nil {
			return err
		}
		r.fileIdx++
		if err := r.open(); err != nil {
			return err
		}
	}
	if err := r.w.Write(row); err != nil {
		return err
	}
	r.rows++
	return nil
}

func (r *rollingFile) close() error {
	if r.f == nil {
		return nil
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return err
	}
	return r.f.Close()
}

// New opens a Writer rooted at dir, creating it if necessary.
func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Writer{
		dir: dir,
		end: newRollingFile(dir, "end.out", []string{
			"index", "kind", "stopcode", "t0", "t1",
			"x0", "y0", "z0", "vx0", "vy0", "vz0",
			"x1", "y1", "z1", "vx1", "vy1", "vz1",
			"psurvive", "hmax", "trajlen", "numreflections",
		}, 0),
		reflect: newRollingFile(dir, "reflect.out", []string{
			"index", "t", "x", "y", "z", "vx_in", "vy_in", "vz_in", "vx_out", "vy_out", "vz_out", "diffuse",
		}, 0),
		track: newRollingFile(dir, "track.out", []string{
			"index", "t", "x", "y", "z", "vx", "vy", "vz", "bx", "by", "bz", "ex", "ey", "ez", "v",
		}, trackRollover),
		bloch: newRollingFile(dir, "BF.out", []string{
			"index", "t", "sx", "sy", "sz", "bx", "by", "bz",
		}, bfRollover),
	}, nil
}

func f(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// EndRow is one terminated particle's end.out record (§6).
type EndRow struct {
	Index          int
	Kind           string
	StopCode       int
	T0, T1         float64
	Pos0, Vel0     spatial.Vec3
	Pos1, Vel1     spatial.Vec3
	PSurvive       float64
	HMax           float64
	TrajLen        float64
	NumReflections int
}

func (w *Writer) WriteEnd(r EndRow) error {
	return w.end.writeRow([]string{
		strconv.Itoa(r.Index), r.Kind, strconv.Itoa(r.StopCode), f(r.T0), f(r.T1),
		f(r.Pos0[0]), f(r.Pos0[1]), f(r.Pos0[2]), f(r.Vel0[0]), f(r.Vel0[1]), f(r.Vel0[2]),
		f(r.Pos1[0]), f(r.Pos1[1]), f(r.Pos1[2]), f(r.Vel1[0]), f(r.Vel1[1]), f(r.Vel1[2]),
		f(r.PSurvive), f(r.HMax), f(r.TrajLen), strconv.Itoa(r.NumReflections),
	})
}

// TrackRow is one per-step track.out record (§6).
type TrackRow struct {
	Index   int
	T       float64
	Pos, Vel spatial.Vec3
	B, E    spatial.Vec3
	V       float64
}

func (w *Writer) WriteTrack(r TrackRow) error {
	return w.track.writeRow([]string{
		strconv.Itoa(r.Index), f(r.T),
		f(r.Pos[0]), f(r.Pos[1]), f(r.Pos[2]), f(r.Vel[0]), f(r.Vel[1]), f(r.Vel[2]),
		f(r.B[0]), f(r.B[1]), f(r.B[2]), f(r.E[0]), f(r.E[1]), f(r.E[2]), f(r.V),
	})
}

// BlochRow is one per-sub-step BF.out record (§6), written only inside
// Bloch integration windows.
type BlochRow struct {
	Index int
	T     float64
	Spin  spatial.Vec3
	B     spatial.Vec3
}

func (w *Writer) WriteBloch(r BlochRow) error {
	return w.bloch.writeRow([]string{
		strconv.Itoa(r.Index), f(r.T),
		f(r.Spin[0]), f(r.Spin[1]), f(r.Spin[2]), f(r.B[0]), f(r.B[1]), f(r.B[2]),
	})
}

// ReflectRow is one surface-interaction reflect.out record (§6).
type ReflectRow struct {
	Index         int
	T             float64
	Pos           spatial.Vec3
	VelIn, VelOut spatial.Vec3
	Diffuse       bool
}

func (w *Writer) WriteReflect(r ReflectRow) error {
	diffuse := "0"
	if r.Diffuse {
		diffuse = "1"
	}
	return w.reflect.writeRow([]string{
		strconv.Itoa(r.Index), f(r.T), f(r.Pos[0]), f(r.Pos[1]), f(r.Pos[2]),
		f(r.VelIn[0]), f(r.VelIn[1]), f(r.VelIn[2]),
		f(r.VelOut[0]), f(r.VelOut[1]), f(r.VelOut[2]), diffuse,
	})
}

// Close flushes and closes every open output file.
func (w *Writer) Close() error {
	var firstErr error
	for _, r := range []*rollingFile{w.end, w.reflect, w.track, w.bloch} {
		if err := r.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
