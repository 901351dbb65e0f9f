// Package rxexport turns the current message list into a CSV document and
// copies the newest message to the clipboard.
package rxexport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/metrics"
	"github.com/tOgg1/rxconsole/internal/models"
)

const (
	filenamePrefix = "rx_messages_"
	filenameLayout = "2006-01-02T15:04:05"
)

var csvHeader = []string{"id", "timestamp", "device", "msg_id", "message"}

// EncodeCSV renders messages in list order. Every field is quoted, quotes are
// doubled and newlines in the message text become spaces. Rows are separated
// by "\n" with no trailing newline. The output depends only on messages.
func EncodeCSV(messages []models.Message) []byte {
	var buf bytes.Buffer
	writeRow(&buf, csvHeader)
	for _, msg := range messages {
		buf.WriteByte('\n')
		writeRow(&buf, []string{
			msg.ID.String(),
			msg.Timestamp.String(),
			msg.Device,
			msg.MsgID.String(),
			strings.ReplaceAll(msg.Message, "\n", " "),
		})
	}
	return buf.Bytes()
}

func writeRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
}

// Filename names an export generated at now, truncated to whole seconds (UTC).
func Filename(now time.Time) string {
	return filenamePrefix + now.UTC().Format(filenameLayout) + ".csv"
}

// Result describes a written export.
type Result struct {
	Path string
	Rows int
	Size int
}

// Exporter writes CSV exports into Dir.
type Exporter struct {
	Dir    string
	Now    func() time.Time
	logger zerolog.Logger
}

func NewExporter(dir string) *Exporter {
	return &Exporter{
		Dir:    dir,
		Now:    time.Now,
		logger: logging.Component("rxexport"),
	}
}

// Export writes messages to a new file. An empty list writes nothing and
// returns ok=false.
func (e *Exporter) Export(messages []models.Message) (Result, bool, error) {
	if len(messages) == 0 {
		metrics.ObserveExport("empty")
		return Result{}, false, nil
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	dir := e.Dir
	if dir == "" {
		dir = "."
	}

	data := EncodeCSV(messages)
	path := filepath.Join(dir, Filename(now()))
	if err := writeFileAtomic(path, data); err != nil {
		metrics.ObserveExport("failed")
		return Result{}, false, fmt.Errorf("export csv: %w", err)
	}

	metrics.ObserveExport("written")
	e.logger.Info().Str("path", path).Int("rows", len(messages)).Msg("csv exported")
	return Result{Path: path, Rows: len(messages), Size: len(data)}, true, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".rx_export_*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
