package advisoryjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bridgehub/internal/logger"
	"bridgehub/pkg/models"
)

// Writer appends generated advisories to a JSON lines file. The file is
// an audit trail of this process run; like the rest of the hub it does
// not survive restarts as authoritative state.
type Writer struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewWriter creates a JSONL writer for advisories.
func NewWriter(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	logger.Infof("Advisory JSON writer initialized: %s", path)
	return &Writer{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// WriteAdvisory appends one advisory.
func (w *Writer) WriteAdvisory(adv models.Advisory) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(adv); err != nil {
		return fmt.Errorf("failed to encode advisory: %w", err)
	}
	return nil
}

// Close closes the output file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
