package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samirrijal/vertexgen/internal/adapters/geofile"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
)

// DefaultSampleOutput is where sample points go when --output is empty.
const DefaultSampleOutput = "pontos_exemplo.geojson"

func sampleCmd() *cobra.Command {
	var (
		region string
		n      int
		seed   uint64
		output string
	)

	c := &cobra.Command{
		Use:   "sample",
		Short: "Write a random point set inside a named region",
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, used, err := usecases.GenerateSample(region, n, seed)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = DefaultSampleOutput
			}
			codec, err := geofile.ForPath(path, set.SourceCRS)
			if err != nil {
				return err
			}
			if err := writeFile(path, func(f *os.File) error {
				return codec.WriteCollection(cmd.Context(), f, usecases.AsCollection(set))
			}); err != nil {
				return fmt.Errorf("write sample: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d points in %s written to %s\n", len(set.Points), used, path)
			return nil
		},
	}

	c.Flags().StringVarP(&region, "region", "r", usecases.DefaultSampleRegion,
		"Region: "+strings.Join(usecases.SampleRegionNames(), "|"))
	c.Flags().IntVarP(&n, "points", "n", usecases.DefaultSamplePoints, "Number of points")
	c.Flags().Uint64Var(&seed, "seed", usecases.DefaultSampleSeed, "Random seed")
	c.Flags().StringVarP(&output, "output", "o", "", "Output file (.geojson or .csv; default "+DefaultSampleOutput+")")
	return c
}
