package main

import (
	"fmt"
	"math/rand"

	"github.com/23skdu/halfdist/internal/storage"
	"github.com/spf13/cobra"
)

type genOptions struct {
	out  string
	rows int
	dim  int
	seed int64
}

func newGenCmd(a *app) *cobra.Command {
	opts := &genOptions{}
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write random half-precision vectors to a parquet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vecs, err := genVectors(*opts)
			if err != nil {
				return err
			}
			if err := storage.WriteParquetFile(opts.out, vecs); err != nil {
				return err
			}
			a.logger.Info().
				Str("path", opts.out).
				Int("rows", opts.rows).
				Int("dim", opts.dim).
				Msg("Wrote vectors")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d vectors of dim %d to %s\n", opts.rows, opts.dim, opts.out)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "vectors.parquet", "output parquet file")
	cmd.Flags().IntVar(&opts.rows, "rows", 1000, "number of vectors")
	cmd.Flags().IntVar(&opts.dim, "dim", 768, "vector dimension")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "random seed")
	return cmd
}

func genVectors(opts genOptions) ([]storage.Vector, error) {
	if opts.rows <= 0 || opts.dim <= 0 {
		return nil, fmt.Errorf("gen: rows and dim must be positive")
	}
	rng := rand.New(rand.NewSource(opts.seed))
	vecs := make([]storage.Vector, opts.rows)
	for i := range vecs {
		vecs[i] = storage.Vector{ID: int32(i), Values: randomVector(rng, opts.dim)}
	}
	return vecs, nil
}
