package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/23skdu/halfdist"
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show CPU features and the selected kernel implementation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := halfdist.Info()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Platform:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "CPU:            %s (%s)\n", info.Features.Brand, info.Features.Vendor)
			fmt.Fprintf(out, "Features:       %s\n", strings.Join(featureList(info), " "))
			fmt.Fprintf(out, "Implementation: %s (width %d)\n", info.Implementation, info.Width)
			fmt.Fprintf(out, "Available:      %s\n", strings.Join(info.Available, ", "))
			fmt.Fprintf(out, "vek:            accelerated=%v %s\n", info.VekAccelerated, strings.Join(info.VekFeatures, " "))

			a.logger.Debug().Str("impl", info.Implementation).Msg("info reported")
			return nil
		},
	}
}

func featureList(info halfdist.RuntimeInfo) []string {
	f := info.Features
	var out []string
	for _, flag := range []struct {
		name string
		ok   bool
	}{
		{"avx2", f.HasAVX2},
		{"fma", f.HasFMA},
		{"f16c", f.HasF16C},
		{"avx512", f.HasAVX512},
		{"neon", f.HasNEON},
	} {
		if flag.ok {
			out = append(out, flag.name)
		}
	}
	if len(out) == 0 {
		out = append(out, "none")
	}
	return out
}
