package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DillonBusk/pentrack/internal/spatial"
)

func TestWriterCreatesFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := w.WriteEnd(EndRow{Index: 0, Kind: "neutron"}); err != nil {
		t.Fatalf("WriteEnd failed: %v", err)
	}
	if err := w.WriteTrack(TrackRow{Index: 0, T: 1.0, Pos: spatial.Vec3{0, 0, 1}}); err != nil {
		t.Fatalf("WriteTrack failed: %v", err)
	}
	if err := w.WriteReflect(ReflectRow{Index: 0, T: 1.0}); err != nil {
		t.Fatalf("WriteReflect failed: %v", err)
	}
	if err := w.WriteBloch(BlochRow{Index: 0, T: 1.0}); err != nil {
		t.Fatalf("WriteBloch failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for _, name := range []string{"end.out", "track.out", "reflect.out", "BF.out"} {
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestWriterTrackRollover(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < trackRollover+10; i++ {
		if err := w.WriteTrack(TrackRow{Index: 0, T: float64(i)}); err != nil {
			t.Fatalf("WriteTrack failed at row %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "track.out")); os.IsNotExist(err) {
		t.Error("track.out not created")
	}
	if _, err := os.Stat(filepath.Join(dir, "track.002.out")); os.IsNotExist(err) {
		t.Error("expected a rolled-over track.002.out after exceeding the row cap")
	}
}

func TestWriterEndAndReflectDoNotRoll(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := w.WriteEnd(EndRow{Index: i}); err != nil {
			t.Fatalf("WriteEnd failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "end.002.out")); !os.IsNotExist(err) {
		t.Error("end.out should never roll over")
	}
}
