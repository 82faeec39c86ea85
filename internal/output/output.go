package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/resistanceisuseless/sovax/internal/recon"
)

type ReconResult struct {
	Metadata Metadata      `json:"metadata"`
	Report   *recon.Report `json:"report"`
}

type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Tool      ToolInfo  `json:"tool"`
	Target    string    `json:"target"`
	ScanType  string    `json:"scan_type"`
}

type ToolInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Writer saves a finished report to a file as json or txt.
type Writer struct {
	format  string
	path    string
	version string
}

func New(format, path, version string) *Writer {
	return &Writer{format: format, path: path, version: version}
}

func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) WriteReport(report *recon.Report) error {
	switch w.format {
	case "json":
		return w.writeJSON(report)
	case "txt":
		return w.writeText(report)
	default:
		return fmt.Errorf("unsupported output format: %s", w.format)
	}
}

func (w *Writer) writeJSON(report *recon.Report) error {
	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	result := ReconResult{
		Metadata: Metadata{
			Timestamp: time.Now(),
			Tool:      ToolInfo{Name: "sovaX", Version: w.version},
			Target:    report.Domain,
			ScanType:  "passive",
		},
		Report: report,
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeText lists subdomains one per line, then the interesting URLs.
func (w *Writer) writeText(report *recon.Report) error {
	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	for _, sub := range report.Enumeration.Subdomains {
		if _, err := fmt.Fprintln(file, sub); err != nil {
			return fmt.Errorf("failed to write subdomain: %w", err)
		}
	}
	for _, u := range report.Interesting {
		if _, err := fmt.Fprintln(file, u); err != nil {
			return fmt.Errorf("failed to write URL: %w", err)
		}
	}
	return nil
}
