// Package audit keeps an append-only JSONL history of scans.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/colourscan/colourscan/internal/types"
)

// FileName is the audit log name inside the log directory.
const FileName = "audit.jsonl"

type ScanRecord struct {
	Timestamp      time.Time     `json:"timestamp"`
	ScanID         string        `json:"scan_id"`
	Threshold      int           `json:"threshold"`
	TotalMatches   int           `json:"total_matches"`
	NewMatches     int           `json:"new_matches"`
	BaselinedCount int           `json:"baselined_count"`
	FilesScanned   int           `json:"files_scanned"`
	BytesScanned   int           `json:"bytes_scanned"`
	Duration       string        `json:"duration"`
	BaselineFile   string        `json:"baseline_file,omitempty"`
	Files          []FileSummary `json:"files,omitempty"`
}

type FileSummary struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Decompressed int    `json:"decompressed"`
	Matches      int    `json:"matches"`
	Cached       bool   `json:"cached,omitempty"`
}

type AuditLog struct {
	logPath string
}

// NewAuditLog returns a log stored under dir. The directory is created on
// first write.
func NewAuditLog(dir string) *AuditLog {
	return &AuditLog{logPath: filepath.Join(dir, FileName)}
}

func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns recorded scans, newest first. Malformed lines are skipped.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record ScanRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = fmt.Sprintf("scan_%d", record.Timestamp.UnixNano())
	}
	if err := os.MkdirAll(filepath.Dir(a.logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// CreateScanRecord summarizes a scan. all holds every match, fresh only the
// ones left after baseline filtering.
func CreateScanRecord(all, fresh []types.FileResult, threshold int, duration time.Duration, baselineFile string) ScanRecord {
	rec := ScanRecord{
		Timestamp:    time.Now(),
		Threshold:    threshold,
		FilesScanned: len(all),
		Duration:     duration.String(),
		BaselineFile: baselineFile,
	}
	for _, r := range all {
		rec.TotalMatches += len(r.Matches)
		rec.BytesScanned += r.Decompressed
		rec.Files = append(rec.Files, FileSummary{
			Path:         r.Path,
			Size:         r.Size,
			Decompressed: r.Decompressed,
			Matches:      len(r.Matches),
			Cached:       r.Cached,
		})
	}
	for _, r := range fresh {
		rec.NewMatches += len(r.Matches)
	}
	rec.BaselinedCount = rec.TotalMatches - rec.NewMatches
	return rec
}
