package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/soundprediction/veridoc/pkg/types"
)

// Record is a single query's decision trail in Parquet storage.
type Record struct {
	ID            string    `parquet:"id"`
	Timestamp     time.Time `parquet:"timestamp"`
	Query         string    `parquet:"query"`
	Username      string    `parquet:"username"`
	Department    string    `parquet:"department"`
	CanonicalRole string    `parquet:"canonical_role"`
	Framework     string    `parquet:"framework"`
	Retrieved     int       `parquet:"retrieved"`
	Accepted      int       `parquet:"accepted"`
	Denied        int       `parquet:"denied"`
	Degraded      bool      `parquet:"degraded"`
	Decisions     string    `parquet:"decisions"` // JSON string
}

// decision is the per-document entry serialized into Record.Decisions.
type decision struct {
	DocumentID   string   `json:"document_id"`
	Domain       string   `json:"domain"`
	Accepted     bool     `json:"accepted"`
	DenialReason string   `json:"denial_reason,omitempty"`
	MaskedLabels []string `json:"masked_labels,omitempty"`
}

// Writer appends decision records to Parquet files in an output directory.
// Safe for concurrent use.
type Writer struct {
	outputDir string
	mu        sync.Mutex
	buffer    []Record
	batchSize int
}

// NewWriter creates the output directory and a buffered writer. Non-positive
// batchSize defaults to 100.
func NewWriter(outputDir string, batchSize int) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Writer{
		outputDir: outputDir,
		batchSize: batchSize,
		buffer:    make([]Record, 0, batchSize),
	}, nil
}

// Log buffers one query's decision trail. The file is written when the batch
// fills; call Flush or Close to force pending records out.
func (w *Writer) Log(
	query string,
	principal types.Principal,
	role types.CanonicalRole,
	framework string,
	outcomes []types.ValidationOutcome,
	stats types.PipelineStats,
	degraded bool,
) error {
	decisions := make([]decision, 0, len(outcomes))
	for _, o := range outcomes {
		decisions = append(decisions, decision{
			DocumentID:   o.Document.ID,
			Domain:       string(o.Document.Domain),
			Accepted:     o.Accepted,
			DenialReason: string(o.DenialReason),
			MaskedLabels: o.MaskedLabels,
		})
	}
	decisionsJSON, _ := json.Marshal(decisions)

	record := Record{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC(),
		Query:         query,
		Username:      principal.Username,
		Department:    principal.Department,
		CanonicalRole: string(role),
		Framework:     framework,
		Retrieved:     stats.Retrieved,
		Accepted:      stats.Accepted,
		Denied:        stats.Denied,
		Degraded:      degraded,
		Decisions:     string(decisionsJSON),
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer = append(w.buffer, record)
	if len(w.buffer) >= w.batchSize {
		return w.flush()
	}
	return nil
}

// Flush writes any buffered records to a new Parquet file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flush()
}

// flush writes the current buffer. Caller must hold the lock.
func (w *Writer) flush() error {
	if len(w.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("decisions_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(w.outputDir, filename)

	if err := parquet.WriteFile(path, w.buffer); err != nil {
		return fmt.Errorf("failed to write audit parquet file: %w", err)
	}

	w.buffer = w.buffer[:0]
	return nil
}

// Close flushes pending records.
func (w *Writer) Close() error {
	return w.Flush()
}
