package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/samirrijal/vertexgen/internal/adapters/projection"
	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/ports"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
	"github.com/samirrijal/vertexgen/internal/pkg/geospatial"
)

func runCmd() *cobra.Command {
	var (
		input      string
		crs        string
		xlsx       string
		output     string
		policy     string
		algorithm  string
		labelWidth int
		backend    string
		format     string
	)

	c := &cobra.Command{
		Use:   "run",
		Short: "Sequence the points of a file and write the table and re-ordered points",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "pretty" && format != "json" {
				return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
			}
			opts, err := ResolveOptions(domain.DefaultOptions(), policy, algorithm, labelWidth)
			if err != nil {
				return err
			}
			transformer, err := projection.New(backend)
			if err != nil {
				return err
			}

			svc := usecases.NewVertexService(transformer, nil, nil, nil)
			progress := ports.ProgressFunc(func(p domain.Progress) {
				slog.Debug("progress", "stage", p.Stage, "message", p.Message)
			})

			out, err := ProcessFile(cmd.Context(), svc, FileJob{
				Input:      input,
				CRS:        crs,
				TablePath:  xlsx,
				PointsPath: output,
				Options:    opts,
			}, progress)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), out, format)
		},
	}

	c.Flags().StringVarP(&input, "input", "i", "", "Input points (.geojson, .json or .csv with WKT) (required)")
	c.Flags().StringVar(&crs, "crs", "", "Source CRS when the input carries none (default EPSG:4326)")
	c.Flags().StringVar(&xlsx, "xlsx", "", "Table output (.xlsx or .csv; default VERTICES_GERADOS.xlsx)")
	c.Flags().StringVarP(&output, "output", "o", "", "Re-ordered points output (default VERTICES_GERADOS.geojson)")
	c.Flags().StringVar(&policy, "policy", "", "Anchor policy: extreme_point|northernmost|centroid")
	c.Flags().StringVar(&algorithm, "algorithm", "", "Sequencing: sort_by_azimuth|greedy_walk")
	c.Flags().IntVar(&labelWidth, "label-width", 0, "Minimum digits of the label index (>= 2)")
	c.Flags().StringVar(&backend, "backend", "pure", "Projection backend: pure|proj")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("input")
	return c
}

// ResolveOptions parses option names and fills what is empty from def.
func ResolveOptions(def domain.Options, policy, algorithm string, labelWidth int) (domain.Options, error) {
	var opts domain.Options
	if policy != "" {
		p, err := domain.ParseReferencePolicy(policy)
		if err != nil {
			return domain.Options{}, err
		}
		opts.ReferencePolicy = p
	}
	if algorithm != "" {
		a, err := domain.ParseSequencingAlgorithm(algorithm)
		if err != nil {
			return domain.Options{}, err
		}
		opts.Algorithm = a
	}
	opts.LabelWidth = labelWidth
	opts = opts.WithDefaults(def)
	return opts, opts.Validate()
}

func printResult(w io.Writer, out *FileResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"result":      out.Result,
			"table_path":  out.TablePath,
			"points_path": out.PointsPath,
		})
	}

	res := out.Result
	fmt.Fprintf(w, "Run ID:     %s\n", res.RunID)
	fmt.Fprintf(w, "Options:    %s, %s, width %d\n", res.Options.ReferencePolicy, res.Options.Algorithm, res.Options.LabelWidth)
	if res.Anchor.IsMember() {
		fmt.Fprintf(w, "Anchor:     input #%d (%.6f, %.6f)\n", res.Anchor.MemberIndex, res.Anchor.Latitude, res.Anchor.Longitude)
	} else {
		fmt.Fprintf(w, "Anchor:     centroid (%.6f, %.6f)\n", res.Anchor.Latitude, res.Anchor.Longitude)
	}
	fmt.Fprintf(w, "Zones:      %v\n", res.Summary.Zones)
	fmt.Fprintf(w, "Perimeter:  %.3f m\n", res.Summary.PerimeterMeters)
	fmt.Fprintln(w)

	printTable(w, res.Table)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Table:      %s\n", out.TablePath)
	fmt.Fprintf(w, "Points:     %s\n", out.PointsPath)
	return nil
}

func printTable(w io.Writer, rows []domain.TableRow) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(domain.TableColumns)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})
	for _, r := range rows {
		table.Append([]string{
			r.Label,
			r.Latitude,
			r.Longitude,
			strconv.FormatFloat(r.Easting, 'f', geospatial.MeterDecimals, 64),
			strconv.FormatFloat(r.Northing, 'f', geospatial.MeterDecimals, 64),
		})
	}
	table.Render()
}
