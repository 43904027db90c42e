// Command piclut applies a .cube 3D LUT to photographs, with optional
// banding mitigation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	piclut "github.com/yzigangirova/piclut-go"
	"github.com/yzigangirova/piclut-go/imgio"
	"github.com/yzigangirova/piclut-go/mem"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "piclut",
		Short:         "Apply .cube 3D LUTs to images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newApplyCmd())
	cmd.AddCommand(newInspectCmd())
	return cmd
}

func newApplyCmd() *cobra.Command {
	var (
		lutPath        string
		strength       float64
		mitigation     string
		seed           int64
		workers        int
		outDir         string
		format         string
		debandFallback bool
	)

	cmd := &cobra.Command{
		Use:   "apply -l LUT [flags] IMAGE...",
		Short: "Transform one or more images through a LUT",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mit, err := piclut.ParseMitigation(mitigation)
			if err != nil {
				return err
			}

			lut, err := piclut.ParseCubeFile(lutPath)
			if err != nil {
				return err
			}
			if lut.Title != "" {
				slog.Debug("loaded LUT", "title", lut.Title, "size", lut.Size)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			mm := mem.NewManager()
			cfg := piclut.PipelineConfig{
				Strength:       strength,
				Mitigation:     mit,
				Seed:           seed,
				Workers:        workers,
				DebandFallback: debandFallback,
			}
			runner := &piclut.BatchRunner{
				Decoder: imgio.Decoder{Mem: mm},
				Mem:     mm,
				Progress: func(p piclut.BatchProgress) {
					if p.Err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] failed: %s: %v\n", p.Index, p.Total, p.Path, p.Err)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] done: %s\n", p.Index, p.Total, p.Path)
					}
				},
			}

			items, err := runner.Run(args, lut, cfg)
			if err != nil {
				return err
			}

			var writeErrs int
			for _, item := range items {
				if item.Err != nil {
					continue
				}
				dst := outputPath(outDir, item.Path, format)
				if err := imgio.Encode(dst, item.Image); err != nil {
					slog.Error("write failed", "path", dst, "error", err)
					writeErrs++
				}
			}
			if writeErrs > 0 {
				return fmt.Errorf("%d output(s) could not be written", writeErrs)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lutPath, "lut", "l", "", ".cube LUT file (required)")
	cmd.Flags().Float64VarP(&strength, "strength", "s", 1.0, "LUT strength in [0,1]")
	cmd.Flags().StringVarP(&mitigation, "mitigation", "m", "none",
		"banding mitigation: none, ordered, noise, floyd-steinberg, deband")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for the noise dither (0 = time-based)")
	cmd.Flags().IntVar(&workers, "workers", 0, "row-parallel workers (0 = all cores)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&format, "format", "", "output extension override (png, jpg, tiff, bmp)")
	cmd.Flags().BoolVar(&debandFallback, "deband-fallback", false,
		"use the plain bilateral smoother instead of the edge-preserving debander")
	_ = cmd.MarkFlagRequired("lut")
	return cmd
}

// outputPath derives the output file name: <outDir>/<base>_lut.<ext>.
func outputPath(outDir, srcPath, format string) string {
	base := filepath.Base(srcPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if format != "" {
		ext = "." + strings.TrimPrefix(format, ".")
	}
	return filepath.Join(outDir, stem+"_lut"+ext)
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect LUT...",
		Short: "Print size and title of .cube files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				lut, err := piclut.ParseCubeFile(path)
				if err != nil {
					return err
				}
				title := lut.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%dx%d  %s\n",
					path, lut.Size, lut.Size, lut.Size, title)
			}
			return nil
		},
	}
}
