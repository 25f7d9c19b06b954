package ioadapter

import (
	"io"

	"github.com/klauspost/compress/gzip"
	json "github.com/segmentio/encoding/json"

	desk "github.com/fxdesk/deskreplay"
)

// AuditLogWriter appends gzip-compressed newline-delimited JSON records to
// an underlying writer, one object per [desk.OutputRecord] (spec.md §4.J).
type AuditLogWriter struct {
	gz *gzip.Writer
}

// NewAuditLogWriter wraps w in a gzip NDJSON writer.
func NewAuditLogWriter(w io.Writer) *AuditLogWriter {
	return &AuditLogWriter{gz: gzip.NewWriter(w)}
}

// WriteRecord appends a single JSON line for rec.
func (a *AuditLogWriter) WriteRecord(rec desk.OutputRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := a.gz.Write(b); err != nil {
		return err
	}
	_, err = a.gz.Write([]byte("\n"))
	return err
}

// WriteAll appends one line per record, in order.
func (a *AuditLogWriter) WriteAll(records []desk.OutputRecord) error {
	for _, r := range records {
		if err := a.WriteRecord(r); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the underlying gzip stream.
func (a *AuditLogWriter) Close() error { return a.gz.Close() }
