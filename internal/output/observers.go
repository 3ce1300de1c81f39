package output

import (
	"github.com/DillonBusk/pentrack/internal/collision"
	"github.com/DillonBusk/pentrack/internal/dynamo"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/spatial"
)

// OnTrackStep satisfies driver.TrackObserver, logging the last dense
// sample of the committed step as one track.out row.
func (w *Writer) OnTrackStep(p *particle.Particle, dense dynamo.DenseOutput) {
	if len(dense.Samples) == 0 {
		return
	}
	s := dense.Samples[len(dense.Samples)-1]
	if err := w.WriteTrack(TrackRow{
		Index: p.Index,
		T:     s.T,
		Pos:   spatial.Vec3{s.Y[0], s.Y[1], s.Y[2]},
		Vel:   spatial.Vec3{s.Y[3], s.Y[4], s.Y[5]},
		B:     spatial.Vec3{s.Bx[0], s.Bx[1], s.Bx[2]},
		E:     spatial.Vec3{s.Ex[0], s.Ex[1], s.Ex[2]},
		V:     s.V,
	}); err != nil {
		w.lastErr = err
	}
}

// OnReflect satisfies driver.ReflectObserver.
func (w *Writer) OnReflect(p *particle.Particle, out collision.Outcome) {
	if err := w.WriteReflect(ReflectRow{
		Index:   p.Index,
		T:       out.TStar,
		Pos:     out.Pos,
		VelIn:   p.Vel,
		VelOut:  out.Vel,
		Diffuse: out.Diffuse,
	}); err != nil {
		w.lastErr = err
	}
}

// OnBlochSegment satisfies driver.BlochObserver, logging every buffered
// spin sample in the segment the tracker just integrated through.
func (w *Writer) OnBlochSegment(p *particle.Particle, dense dynamo.DenseOutput) {
	for _, s := range dense.Samples {
		if err := w.WriteBloch(BlochRow{
			Index: p.Index,
			T:     s.T,
			Spin:  p.Spin,
			B:     spatial.Vec3{s.Bx[0], s.Bx[1], s.Bx[2]},
		}); err != nil {
			w.lastErr = err
			return
		}
	}
}

// LastError returns the first write error an observer callback
// encountered, since the driver.*Observer interfaces are void-returning.
func (w *Writer) LastError() error { return w.lastErr }

// WriteParticleEnd logs a terminated particle's end.out row straight from
// its final state.
func (w *Writer) WriteParticleEnd(p *particle.Particle) error {
	return w.WriteEnd(EndRow{
		Index:          p.Index,
		Kind:           p.Kind.String(),
		StopCode:       int(p.Stop),
		T0:             p.T0,
		T1:             p.T,
		Pos0:           p.InitialPos,
		Vel0:           p.InitialVel,
		Pos1:           p.Pos,
		Vel1:           p.Vel,
		PSurvive:       p.PSurvive,
		HMax:           p.HMax,
		TrajLen:        p.TrajLen,
		NumReflections: p.NumReflections,
	})
}
