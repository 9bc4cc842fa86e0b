package reporter

import (
	"io"
	"os"
	"sync"

	"github.com/goccy/go-json"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// OutputMaxSizeMB is the size to rotate the output file at.
	OutputMaxSizeMB = 2

	// OutputMaxBackups is the number of rotated output files to keep.
	OutputMaxBackups = 5
)

// Record is a line of the JSON lines output.
type Record struct {
	Type  string          `json:"type"`
	Tick  *api.TickResult `json:"tick,omitempty"`
	Alert *api.Alert      `json:"alert,omitempty"`
}

// JSONLines writes tick results and alerts to a writer, one JSON object per line.
type JSONLines struct {
	mu     sync.Mutex
	w      io.Writer
	logger *zap.Logger
}

// NewJSONLines creates a JSONLines that writes to w. Write errors are logged to logger.
func NewJSONLines(w io.Writer, logger *zap.Logger) *JSONLines {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONLines{w: w, logger: logger}
}

func (j *JSONLines) write(r Record) {
	b, err := json.Marshal(r)
	if err != nil {
		j.logger.Error("failed to encode record", zap.Error(err))
		return
	}
	b = append(b, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.w.Write(b); err != nil {
		j.logger.Error("failed to write record", zap.String("type", r.Type), zap.Error(err))
	}
}

// ReportTick implements engine.Reporter.
func (j *JSONLines) ReportTick(t api.TickResult) {
	j.write(Record{Type: "tick", Tick: &t})
}

// ReportAlert implements engine.Reporter.
func (j *JSONLines) ReportAlert(a api.Alert) {
	j.write(Record{Type: "alert", Alert: &a})
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

// OpenOutput opens the destination of the JSON lines output.
//
// "-" means stdout and "" means discarding. Any other path is a file that is rotated every OutputMaxSizeMB.
func OpenOutput(path string) io.WriteCloser {
	switch path {
	case "":
		return nopCloser{io.Discard}
	case "-":
		return nopCloser{os.Stdout}
	default:
		return &lumberjack.Logger{
			Filename:   path,
			MaxSize:    OutputMaxSizeMB,
			MaxBackups: OutputMaxBackups,
		}
	}
}
