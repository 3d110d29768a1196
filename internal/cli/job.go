package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/samirrijal/vertexgen/internal/adapters/geofile"
	"github.com/samirrijal/vertexgen/internal/adapters/spreadsheet"
	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/ports"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
)

// FileJob describes one file-to-file pipeline run.
type FileJob struct {
	Input      string // .geojson, .json or .csv with a WKT column
	CRS        string // source CRS for inputs that carry none
	TablePath  string // .xlsx or .csv; empty writes VERTICES_GERADOS.xlsx
	PointsPath string // re-ordered points; empty writes VERTICES_GERADOS.geojson
	Options    domain.Options
}

// FileResult is a finished FileJob with the paths actually written.
type FileResult struct {
	Result     *domain.Result
	TablePath  string
	PointsPath string
}

// ProcessFile reads the input, runs the pipeline and writes both outputs.
// Nothing is written when the run fails.
func ProcessFile(ctx context.Context, svc *usecases.VertexService, job FileJob, progress ports.ProgressSink) (*FileResult, error) {
	set, err := ReadPointSet(ctx, job.Input, job.CRS)
	if err != nil {
		return nil, err
	}

	res, err := svc.Run(ctx, *set, job.Options, progress)
	if err != nil {
		return nil, err
	}

	out := &FileResult{
		Result:     res,
		TablePath:  geofile.NormalizeOutputPath(job.TablePath, ".xlsx"),
		PointsPath: geofile.NormalizeOutputPath(job.PointsPath, ".geojson"),
	}

	tw, err := spreadsheet.ForPath(out.TablePath)
	if err != nil {
		return nil, err
	}
	if err := writeFile(out.TablePath, func(f *os.File) error {
		return tw.WriteTable(ctx, f, res.Table)
	}); err != nil {
		return nil, fmt.Errorf("write table: %w", err)
	}

	cw, err := geofile.ForPath(out.PointsPath, res.Collection.SourceCRS)
	if err != nil {
		return nil, err
	}
	if err := writeFile(out.PointsPath, func(f *os.File) error {
		return cw.WriteCollection(ctx, f, res.Collection)
	}); err != nil {
		return nil, fmt.Errorf("write points: %w", err)
	}
	return out, nil
}

// ReadPointSet opens a point file with the codec matching its extension.
func ReadPointSet(ctx context.Context, path, crs string) (*domain.PointSet, error) {
	if crs == "" {
		crs = geofile.DefaultCRS
	}
	codec, err := geofile.ForPath(path, crs)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	set, err := codec.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return set, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
