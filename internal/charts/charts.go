// Package charts renders deck statistics as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/deck-analyzer/internal/analyzer"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string   // Chart title
	Subtitle string   // Chart subtitle
	Width    string   // Chart width (e.g., "900px")
	Height   string   // Chart height (e.g., "500px")
	Theme    string   // Chart theme
	Colors   []string // Custom colors
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Colors: []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// colorPalette maps color symbols to chart slice colors.
var colorPalette = map[string]string{
	"W": "#F8F6D8",
	"U": "#0E68AB",
	"B": "#3B3B3B",
	"R": "#D3202A",
	"G": "#00733E",
}

// RenderBarChart creates an interactive bar chart HTML file.
func RenderBarChart(data []DataPoint, config ChartConfig, outputPath string) error {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
		}),
	)

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Cards", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	return renderToFile(bar, outputPath)
}

// RenderPieChart creates an interactive pie chart HTML file. Slice
// colors follow the label's palette entry when one exists.
func RenderPieChart(data []DataPoint, config ChartConfig, outputPath string) error {
	pie := charts.NewPie()

	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)

	pieData := make([]opts.PieData, len(data))
	for i, point := range data {
		pieData[i] = opts.PieData{Name: point.Label, Value: point.Value}
		if hex, ok := colorPalette[point.Label]; ok {
			pieData[i].ItemStyle = &opts.ItemStyle{Color: hex}
		}
	}

	pie.AddSeries("Cards", pieData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c} ({d}%)",
			}),
		)

	return renderToFile(pie, outputPath)
}

type renderer interface {
	Render(w io.Writer) error
}

func renderToFile(chart renderer, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

// WriteDeckCharts renders the mana curve, color distribution, and
// rarity charts for stats into outputDir and returns the written file
// paths.
func WriteDeckCharts(stats *analyzer.DeckStats, config ChartConfig, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart directory: %w", err)
	}

	var written []string

	curvePath := filepath.Join(outputDir, "mana_curve.html")
	curveCfg := config
	curveCfg.Title = "Mana Curve"
	curveCfg.Subtitle = fmt.Sprintf("Average mana value %.2f (nonlands only)", stats.AverageManaValue)
	var curveData []DataPoint
	for _, bucket := range analyzer.CurveBuckets() {
		curveData = append(curveData, DataPoint{Label: bucket, Value: float64(stats.ManaCurve[bucket])})
	}
	if err := RenderBarChart(curveData, curveCfg, curvePath); err != nil {
		return written, err
	}
	written = append(written, curvePath)

	if len(stats.ColorCounts) > 0 {
		colorPath := filepath.Join(outputDir, "colors.html")
		colorCfg := config
		colorCfg.Title = "Color Distribution"
		var colorData []DataPoint
		for _, symbol := range []string{"W", "U", "B", "R", "G"} {
			if count, ok := stats.ColorCounts[symbol]; ok {
				colorData = append(colorData, DataPoint{Label: symbol, Value: float64(count)})
			}
		}
		if err := RenderPieChart(colorData, colorCfg, colorPath); err != nil {
			return written, err
		}
		written = append(written, colorPath)
	}

	if len(stats.RarityCounts) > 0 {
		rarityPath := filepath.Join(outputDir, "rarity.html")
		rarityCfg := config
		rarityCfg.Title = "Rarity Breakdown"
		var rarityData []DataPoint
		for _, rarity := range []string{"common", "uncommon", "rare", "mythic", "special", "bonus"} {
			if count, ok := stats.RarityCounts[rarity]; ok {
				rarityData = append(rarityData, DataPoint{Label: rarity, Value: float64(count)})
			}
		}
		if err := RenderBarChart(rarityData, rarityCfg, rarityPath); err != nil {
			return written, err
		}
		written = append(written, rarityPath)
	}

	return written, nil
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
