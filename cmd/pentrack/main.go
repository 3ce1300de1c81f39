// Command pentrack runs the particle tracking simulation described by the
// geometry/material/field tables and config.yaml found under inpath,
// writing end.out/track.out/BF.out/reflect.out to outpath (§6).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/DillonBusk/pentrack/internal/config"
	"github.com/DillonBusk/pentrack/internal/diagnostic"
	"github.com/DillonBusk/pentrack/internal/driver"
	"github.com/DillonBusk/pentrack/internal/field"
	"github.com/DillonBusk/pentrack/internal/geom"
	"github.com/DillonBusk/pentrack/internal/integrators"
	"github.com/DillonBusk/pentrack/internal/loader"
	"github.com/DillonBusk/pentrack/internal/material"
	"github.com/DillonBusk/pentrack/internal/output"
	"github.com/DillonBusk/pentrack/internal/particle"
	"github.com/DillonBusk/pentrack/internal/rng"
	"github.com/DillonBusk/pentrack/internal/source"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pentrack [jobnumber] [inpath] [outpath] [seed]",
		Short: "track neutrons, protons, and electrons through superposed fields and geometry",
		Args:  cobra.MaximumNArgs(4),
		RunE:  run,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pentrack:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	jobNumber := 0
	inPath := "./in"
	outPath := "./out"
	seed := time.Now().UnixNano()

	if len(args) > 0 {
		n, err := parseInt(args[0])
		if err != nil {
			return fmt.Errorf("jobnumber: %w", err)
		}
		jobNumber = n
	}
	if len(args) > 1 {
		inPath = args[1]
	}
	if len(args) > 2 {
		outPath = args[2]
	}
	if len(args) > 3 {
		n, err := parseInt(args[3])
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		seed = int64(n)
	}

	cfg, err := config.Load(filepath.Join(inPath, "config.yaml"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Seed = seed

	materials, err := loader.LoadMaterials(filepath.Join(inPath, "materials.in"))
	if err != nil {
		return fmt.Errorf("loading materials: %w", err)
	}
	geometry, registry, err := loader.LoadGeometry(filepath.Join(inPath, "geometry.in"), materials)
	if err != nil {
		return fmt.Errorf("loading geometry: %w", err)
	}

	fields, err := loadFields(inPath)
	if err != nil {
		return fmt.Errorf("loading fields: %w", err)
	}

	if cfg.SimType != config.SimParticle {
		if err := os.MkdirAll(outPath, 0755); err != nil {
			return fmt.Errorf("opening output: %w", err)
		}
		return runDiagnostic(cfg, outPath, fields, geometry, materials)
	}

	writer, err := output.New(outPath)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer writer.Close()

	integrator := integrators.NewCashKarp(cfg.Dxsav)

	driverCfg := buildDriverConfig(cfg)
	if err := driverCfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	d := driver.New(fields, geometry, registry, integrator, driverCfg)
	d.Track = writer
	d.Reflect = writer
	d.Bloch = writer

	sampler := source.NewSampler(geometry)

	particles := make([]*particle.Particle, 0, cfg.SimCount)
	for i := 0; i < cfg.SimCount; i++ {
		kind, preset := sourceFor(cfg, jobNumber, i)
		stream := rng.New(cfg.Seed, i)
		p := sampler.Next(preset, kind, i, 0, stream)
		particles = append(particles, p)
	}

	pool := driver.NewPool(d, cfg.Seed)
	if err := pool.Run(context.Background(), particles); err != nil {
		return fmt.Errorf("running particles: %w", err)
	}

	for _, p := range particles {
		if err := writer.WriteParticleEnd(p); err != nil {
			return fmt.Errorf("writing end.out: %w", err)
		}
	}

	if err := writer.LastError(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// buildDriverConfig adapts the top-level YAML config into the driver's
// per-run Config, resolving each kind's tolerance/initial step from
// cfg.Kinds.
func buildDriverConfig(cfg *config.Config) driver.Config {
	dc := driver.Config{
		SimTime:       cfg.SimTime,
		MaxDt:         cfg.MaxDt,
		BTarget:       cfg.BTarget,
		SpinBufferCap: cfg.SpinBufferCap,
		SpinTolerance: cfg.SpinTolerance,
		FlipOnSample:  cfg.FlipOnSample,
		H1:            make(map[particle.Kind]float64),
		Tolerance:     make(map[particle.Kind]float64),
	}
	for name, kc := range cfg.Kinds {
		k, ok := kindByName(name)
		if !ok {
			continue
		}
		dc.H1[k] = kc.H1
		dc.Tolerance[k] = kc.Tolerance
	}
	return dc
}

func kindByName(name string) (particle.Kind, bool) {
	switch name {
	case "neutron":
		return particle.Neutron, true
	case "proton":
		return particle.Proton, true
	case "electron":
		return particle.Electron, true
	default:
		return 0, false
	}
}

// defaultPresetFor names the source preset each kind draws from when the
// config doesn't otherwise say, matching the preset each kind's own
// table in config.Presets leads with.
var defaultPresetFor = map[string]string{
	"neutron":  "storage",
	"proton":   "decay_spectrum",
	"electron": "decay_spectrum",
}

// sourceFor resolves which particle kind and source preset job jobNumber's
// i'th particle should draw from. cfg.Kinds names the active kinds for
// this run; particles round-robin across them in sorted order, offset by
// jobNumber, so a multi-job batch spreads its kinds evenly across jobs
// without every job needing its own kind list.
func sourceFor(cfg *config.Config, jobNumber, index int) (particle.Kind, *config.SourcePreset) {
	names := activeKindNames(cfg)
	if len(names) == 0 {
		names = []string{"neutron"}
	}
	name := names[((jobNumber+index)%len(names)+len(names))%len(names)]

	kind, ok := kindByName(name)
	if !ok {
		kind = particle.Neutron
	}
	preset := config.GetPreset(name, defaultPresetFor[name])
	if preset == nil {
		preset = &config.SourcePreset{Kind: name}
	}
	return kind, preset
}

// activeKindNames returns cfg.Kinds's keys that name a known particle
// kind, sorted for a deterministic round-robin order.
func activeKindNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Kinds))
	for name := range cfg.Kinds {
		if _, ok := kindByName(name); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// runDiagnostic dispatches the five non-PARTICLE simtype values (§6) to
// their grid-sampling dump and exits without constructing any particles.
func runDiagnostic(cfg *config.Config, outPath string, fields *field.Manager, geometry *geom.Geometry, materials map[string]material.Material) error {
	switch cfg.SimType {
	case config.SimBFOnly:
		return diagnostic.PrintBField(outPath, fields)
	case config.SimBFCut:
		p1, p2, p3 := diagnostic.DefaultCutPlane(geometry)
		return diagnostic.PrintBFieldCut(outPath, fields, p1, p2, p3, 50, 50)
	case config.SimGeometry:
		stream := rng.New(cfg.Seed, 0)
		return diagnostic.PrintGeometry(outPath, geometry, stream)
	case config.SimMRThetaOut:
		return diagnostic.PrintMROutAngle(outPath, materials)
	case config.SimMRThetaEnergy:
		return diagnostic.PrintMRThetaIEnergy(outPath, materials)
	default:
		return fmt.Errorf("unknown simtype %q", cfg.SimType)
	}
}

func loadFields(inPath string) (*field.Manager, error) {
	ramp := field.Static()
	var sources []field.Source

	tablePath := filepath.Join(inPath, "field.tab")
	if _, err := os.Stat(tablePath); err == nil {
		src, err := field.LoadTable(tablePath, ramp)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	return field.NewManager(sources...), nil
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
