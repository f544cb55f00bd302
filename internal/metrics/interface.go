// Image statistics used to summarize kernel outputs
package metrics

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Metric defines the interface for image metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed gocv.Mat) (float64, error)

	// GetName returns the metric name
	GetName() string

	// GetDescription returns the metric description
	GetDescription() string

	// GetRange returns the value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates a new metrics evaluator
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.RegisterDefaultMetrics()

	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("mse", NewMSE())
	e.Register("sharpness", NewSharpness())
	e.Register("edge_density", NewEdgeDensity())
	e.Register("gradient_energy", NewGradientEnergy())
	e.Register("mean_response", NewMeanResponse())
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names, sorted.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, errors.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(original, processed)
}

// EvaluateStep calculates the metrics that make sense for a demo step
func (e *Evaluator) EvaluateStep(before, after gocv.Mat, stepName string) map[string]float64 {
	var names []string

	switch stepName {
	case "quantize":
		names = []string{"psnr", "mse", "gradient_energy"}
	case "convolve_box":
		names = []string{"psnr", "sharpness", "gradient_energy"}
	case "canny":
		names = []string{"edge_density"}
	case "sobel_x", "sobel_y", "laplacian":
		names = []string{"mean_response"}
	}

	results := make(map[string]float64, len(names))
	for _, name := range names {
		if value, err := e.Calculate(name, before, after); err == nil {
			results[name] = value
		}
	}

	return results
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string
	Description  string
	Range        [2]float64 // [min, max]
	HigherBetter bool
}

// GetMetricInfo returns information about all metrics
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)

	for name, metric := range e.metrics {
		min, max := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{min, max},
			HigherBetter: metric.IsHigherBetter(),
		}
	}

	return info
}

// Report is the metric summary of one step
type Report struct {
	Step      string             `json:"step"`
	Metrics   map[string]float64 `json:"metrics"`
	Timestamp string             `json:"timestamp"`
}

// GenerateReport evaluates a step and stamps the result
func (e *Evaluator) GenerateReport(before, after gocv.Mat, stepName string) Report {
	return Report{
		Step:      stepName,
		Metrics:   e.EvaluateStep(before, after, stepName),
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
}
