package indexes

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// ShellToolkit implements Toolkit by shelling out to an installed vg binary.
// The caller controls cancellation with ctx; a canceled context kills the
// child process.
type ShellToolkit struct {
	// Bin is the vg executable to invoke. Defaults to "vg" on PATH.
	Bin string
}

func (t *ShellToolkit) bin() string {
	if t.Bin != "" {
		return t.Bin
	}
	return "vg"
}

// run invokes one vg subcommand, redirecting stdout to the output file.
func (t *ShellToolkit) run(ctx context.Context, out string, args ...string) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	cmd := exec.CommandContext(ctx, t.bin(), args...)
	cmd.Stdout = f
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", t.bin(), args[0], err)
	}
	return f.Close()
}

func (t *ShellToolkit) ConstructGraph(ctx context.Context, opts ConstructOptions, fastas, vcfs, insertions []string, out string) error {
	args := []string{"construct", "-m", strconv.Itoa(opts.MaxNodeSize)}
	if opts.AltPaths {
		args = append(args, "-a")
	}
	for _, fasta := range fastas {
		args = append(args, "-r", fasta)
	}
	for _, vcf := range vcfs {
		args = append(args, "-v", vcf)
	}
	for _, insertion := range insertions {
		args = append(args, "-I", insertion)
	}
	return t.run(ctx, out, args...)
}

func (t *ShellToolkit) GraphFromGFA(ctx context.Context, opts ConstructOptions, gfa, out string) error {
	return t.run(ctx, out, "convert", "-g", gfa)
}

func (t *ShellToolkit) StripAltPaths(ctx context.Context, graph, out string) error {
	return t.run(ctx, out, "paths", "-d", "-Q", "_alt_", "-v", graph)
}

func (t *ShellToolkit) XGFromGFA(ctx context.Context, gfa, out string) error {
	cmd := exec.CommandContext(ctx, t.bin(), "index", "-x", out, "-g", gfa)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s index: %w", t.bin(), err)
	}
	return nil
}

func (t *ShellToolkit) XGFromGraph(ctx context.Context, graph, out string) error {
	cmd := exec.CommandContext(ctx, t.bin(), "index", "-x", out, graph)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s index: %w", t.bin(), err)
	}
	return nil
}

func (t *ShellToolkit) InitNodeMapping(ctx context.Context, graph, out string) error {
	return t.run(ctx, out, "ids", "-m", "-", graph)
}

func (t *ShellToolkit) BuildGBWT(ctx context.Context, graph, phasedVCF, out string) error {
	cmd := exec.CommandContext(ctx, t.bin(), "index", "-G", out, "-v", phasedVCF, graph)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s index: %w", t.bin(), err)
	}
	return nil
}

func (t *ShellToolkit) PruneGraph(ctx context.Context, opts PruneOptions, graph, xg, out string) error {
	return t.run(ctx, out, "prune",
		"-M", strconv.Itoa(opts.MaxNodeDegree),
		"-k", strconv.Itoa(opts.WalkLength),
		"-e", strconv.Itoa(opts.MaxEdgeCount),
		"-s", strconv.Itoa(opts.MinComponentSize),
		"-r", graph)
}

func (t *ShellToolkit) PruneWithHaplotypes(ctx context.Context, opts PruneOptions, graph, xg, gbwt, mapping, outGraph, outMapping string) error {
	// the mapping is rewritten in place, so work on a copy
	if err := copyFile(mapping, outMapping); err != nil {
		return err
	}
	return t.run(ctx, outGraph, "prune",
		"-M", strconv.Itoa(opts.MaxNodeDegree),
		"-k", strconv.Itoa(opts.WalkLength),
		"-e", strconv.Itoa(opts.MaxEdgeCount),
		"-s", strconv.Itoa(opts.MinComponentSize),
		"-u", "-g", gbwt, "-m", outMapping,
		graph)
}

func (t *ShellToolkit) BuildGCSA(ctx context.Context, opts GCSAOptions, graphs []string, mapping, outGCSA, outLCP string) error {
	// vg writes the LCP array next to the GCSA on its own; outLCP is that name
	args := []string{"index", "-g", outGCSA,
		"-k", strconv.Itoa(opts.InitialKmerLength),
		"-X", strconv.Itoa(opts.DoublingSteps)}
	if mapping != "" {
		args = append(args, "-f", mapping)
	}
	args = append(args, graphs...)

	cmd := exec.CommandContext(ctx, t.bin(), args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s index: %w", t.bin(), err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
