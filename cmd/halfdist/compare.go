package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/23skdu/halfdist"
	"github.com/23skdu/halfdist/internal/storage"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/spf13/cobra"
)

type compareOptions struct {
	a, b   string
	file   string
	rowA   int
	rowB   int
	metric string
}

func newCompareCmd(a *app) *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two vectors",
		Long: `Compare two vectors given inline (--a, --b) or as rows of a parquet file
written by "halfdist gen" (--file, --row-a, --row-b). Values are narrowed to
half precision before comparison.`,
		Example: `  halfdist compare --a 1,2,3 --b 3,2,1
  halfdist compare --file vecs.parquet --row-a 0 --row-b 5 --metric cosine`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			va, vb, err := opts.vectors()
			if err != nil {
				return err
			}

			metrics, err := opts.metrics()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range metrics {
				d, err := halfdist.Distance(m, va, vb)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-7s %g\n", m, d)
			}
			a.logger.Debug().
				Int("dim", len(va)).
				Str("impl", halfdist.Info().Implementation).
				Msg("compared vectors")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.a, "a", "", "first vector as comma-separated values")
	cmd.Flags().StringVar(&opts.b, "b", "", "second vector as comma-separated values")
	cmd.Flags().StringVar(&opts.file, "file", "", "parquet file of vectors")
	cmd.Flags().IntVar(&opts.rowA, "row-a", 0, "row of the first vector in --file")
	cmd.Flags().IntVar(&opts.rowB, "row-b", 1, "row of the second vector in --file")
	cmd.Flags().StringVar(&opts.metric, "metric", "all", "l2sq, ip, cosine or all")
	cmd.MarkFlagsMutuallyExclusive("file", "a")
	cmd.MarkFlagsMutuallyExclusive("file", "b")
	cmd.MarkFlagsRequiredTogether("a", "b")
	return cmd
}

func (o *compareOptions) vectors() ([]float16.Num, []float16.Num, error) {
	if o.file == "" {
		if o.a == "" {
			return nil, nil, fmt.Errorf("either --a/--b or --file is required")
		}
		va, err := parseVector(o.a)
		if err != nil {
			return nil, nil, fmt.Errorf("--a: %w", err)
		}
		vb, err := parseVector(o.b)
		if err != nil {
			return nil, nil, fmt.Errorf("--b: %w", err)
		}
		return va, vb, nil
	}

	vecs, err := storage.ReadParquetFile(o.file)
	if err != nil {
		return nil, nil, err
	}
	for _, row := range []int{o.rowA, o.rowB} {
		if row < 0 || row >= len(vecs) {
			return nil, nil, fmt.Errorf("row %d out of range: %s has %d rows", row, o.file, len(vecs))
		}
	}
	return vecs[o.rowA].Values, vecs[o.rowB].Values, nil
}

func (o *compareOptions) metrics() ([]halfdist.Metric, error) {
	if o.metric == "" || o.metric == "all" {
		return []halfdist.Metric{halfdist.SquaredEuclidean, halfdist.InnerProductSim, halfdist.CosineSim}, nil
	}
	m, err := halfdist.ParseMetric(o.metric)
	if err != nil {
		return nil, err
	}
	return []halfdist.Metric{m}, nil
}

// parseVector reads comma- or space-separated floats.
func parseVector(s string) ([]float16.Num, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	vals := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		vals[i] = float32(v)
	}
	return halfdist.FromFloat32(vals), nil
}
