package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/plotgrid/richlabel/label"
	"github.com/plotgrid/richlabel/layer"
	"github.com/plotgrid/richlabel/renderer"
	canvasrenderer "github.com/plotgrid/richlabel/renderer/canvas"
)

// theme is the TOML-configurable part of a render: panel size, fonts and
// the shared box parameters.
type theme struct {
	PanelWidth   float64           `toml:"panel_width"`  // mm
	PanelHeight  float64           `toml:"panel_height"` // mm
	Fonts        map[string]string `toml:"fonts"`        // family -> file path
	Padding      string            `toml:"padding"`      // e.g. "0.25lines"
	Margin       string            `toml:"margin"`
	CornerRadius string            `toml:"corner_radius"`
}

func defaultTheme() theme {
	return theme{PanelWidth: 160, PanelHeight: 120}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dataPath    string
		themePath   string
		outPath     string
		format      string
		debugPath   string
		nudgeX      float64
		nudgeY      float64
		skipMissing bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "richlabel",
		Short: "Render rich-text labels with background boxes to PDF or PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05.00",
				Level:           level,
			})
			return run(logger, dataPath, themePath, outPath, format, debugPath,
				nudgeX, nudgeY, skipMissing)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "JSON file with label rows (required)")
	cmd.Flags().StringVar(&themePath, "theme", "", "TOML theme file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "labels.pdf", "output file")
	cmd.Flags().StringVar(&format, "format", "", "output format: pdf or png (default from --out extension)")
	cmd.Flags().StringVar(&debugPath, "debug", "", "write resolved instructions as JSON to this path")
	cmd.Flags().Float64Var(&nudgeX, "nudge-x", 0, "horizontal nudge in normalized panel units")
	cmd.Flags().Float64Var(&nudgeY, "nudge-y", 0, "vertical nudge in normalized panel units")
	cmd.Flags().BoolVar(&skipMissing, "skip-missing", false, "drop rows with missing position or label")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	if err := cmd.MarkFlagRequired("data"); err != nil {
		panic(err) // only fails when the flag above was renamed
	}
	return cmd
}

func run(logger *log.Logger, dataPath, themePath, outPath, format, debugPath string, nudgeX, nudgeY float64, skipMissing bool) error {
	start := time.Now()

	th := defaultTheme()
	if themePath != "" {
		if _, err := toml.DecodeFile(themePath, &th); err != nil {
			return fmt.Errorf("read theme %s: %w", themePath, err)
		}
		logger.Debug("theme loaded", "path", themePath)
	}
	box, err := themeBox(th)
	if err != nil {
		return err
	}

	rows, err := readRows(dataPath)
	if err != nil {
		return err
	}
	logger.Debug("rows loaded", "path", dataPath, "count", len(rows))

	if format == "" {
		format = formatFromPath(outPath)
	}
	fonts := map[string]canvasrenderer.Resource{}
	for family, path := range th.Fonts {
		fonts[family] = canvasrenderer.Resource{Path: path}
	}
	backend := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		Format: format,
		Fonts:  fonts,
	})

	l, err := layer.New(layer.Config{
		Rows:        rows,
		Box:         box,
		NudgeX:      nudgeX,
		NudgeY:      nudgeY,
		SkipMissing: skipMissing,
	})
	if err != nil {
		return err
	}

	if debugPath != "" {
		instrs, err := l.Instructions()
		if err != nil {
			return err
		}
		if err := label.WriteDebugJSON(instrs, debugPath); err != nil {
			return fmt.Errorf("write debug JSON: %w", err)
		}
		logger.Debug("debug instructions written", "path", debugPath)
	}

	panel := renderer.Panel{Width: th.PanelWidth, Height: th.PanelHeight}
	out, err := l.Draw(backend, panel)
	if err != nil {
		return fmt.Errorf("render labels: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	logger.Info("rendered", "out", outPath, "labels", len(rows), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func readRows(path string) ([]label.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows %s: %w", path, err)
	}
	var rows []label.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse rows %s: %w", path, err)
	}
	return rows, nil
}

func themeBox(th theme) (*label.BoxParameters, error) {
	box := label.DefaultBoxParameters()
	if th.Padding != "" {
		l, err := label.ParseLength(th.Padding)
		if err != nil {
			return nil, fmt.Errorf("theme padding: %w", err)
		}
		box.Padding = label.UniformInset(l)
	}
	if th.Margin != "" {
		l, err := label.ParseLength(th.Margin)
		if err != nil {
			return nil, fmt.Errorf("theme margin: %w", err)
		}
		box.Margin = label.UniformInset(l)
	}
	if th.CornerRadius != "" {
		l, err := label.ParseLength(th.CornerRadius)
		if err != nil {
			return nil, fmt.Errorf("theme corner radius: %w", err)
		}
		box.CornerRadius = l
	}
	return &box, nil
}

func formatFromPath(path string) string {
	if filepath.Ext(path) == ".png" {
		return canvasrenderer.FormatPNG
	}
	return canvasrenderer.FormatPDF
}
