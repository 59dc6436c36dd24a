package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/t1a2l/SkyTools/internal/config"
	"github.com/t1a2l/SkyTools/internal/factory"
	"github.com/t1a2l/SkyTools/internal/model"
)

func init() {
	factory.RegisterWriter("text", func(def config.WriterDef) (model.Writer, error) {
		if def.Text.RootPath == "" {
			return nil, fmt.Errorf("text writer requires a root_path")
		}
		return NewTextWriter(def.Text.RootPath), nil
	})
}

// TextWriter persists each snapshot round as a timestamped text file under
// a root directory, one "subject;count;average;median" line per subject.
type TextWriter struct {
	rootPath string
}

// NewTextWriter creates a new text writer rooted at the given directory.
func NewTextWriter(rootPath string) *TextWriter {
	return &TextWriter{rootPath: rootPath}
}

// Write renders one round into rootPath/<timestamp>.txt.
func (w *TextWriter) Write(round model.Round, timestamp string) error {
	if err := os.MkdirAll(w.rootPath, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	filePath := filepath.Join(w.rootPath, timestamp+".txt")
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", filePath, err)
	}
	defer file.Close()

	total := 0
	for _, entry := range SortedEntries(round) {
		line := fmt.Sprintf("%s;%d;%d;%d\n", entry.Subject, entry.Count, entry.AverageNs, entry.MedianNs)
		if _, err := file.WriteString(line); err != nil {
			return fmt.Errorf("failed to write report line: %w", err)
		}
		total++
	}

	log.Printf("Wrote %d subject aggregates to %s", total, filePath)
	return nil
}
