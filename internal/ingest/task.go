package ingest

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/google/uuid"

	"conveyor/internal/logging"
	"conveyor/internal/queue"
	"conveyor/internal/services"
)

// Kind is the work-kind label ingest tasks report to the journal.
const Kind = "ingest"

var _ queue.Item = (*FileTask)(nil)

// FileTask analyzes one file. A task built by the watcher carries the bytes
// captured when the file settled; a task built from a submitted path reads
// the file when it executes.
type FileTask struct {
	id      string
	path    string
	content []byte
	logger  *slog.Logger
}

// NewFileTask builds a task that reads path at execution time.
func NewFileTask(path string, logger *slog.Logger) *FileTask {
	return newFileTask(path, nil, logger)
}

// NewFileTaskWithContent builds a task over bytes already read from path, so
// execution succeeds even if the file has since changed or disappeared.
func NewFileTaskWithContent(path string, content []byte, logger *slog.Logger) *FileTask {
	if content == nil {
		content = []byte{}
	}
	return newFileTask(path, content, logger)
}

func newFileTask(path string, content []byte, logger *slog.Logger) *FileTask {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FileTask{
		id:      uuid.NewString(),
		path:    path,
		content: content,
		logger:  logging.NewComponentLogger(logger, "ingest"),
	}
}

func (t *FileTask) ID() string { return t.id }

func (t *FileTask) Kind() string { return Kind }

// Path reports the file the task was built for.
func (t *FileTask) Path() string { return t.path }

func (t *FileTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.path == "" {
		return services.Wrap(services.ErrValidation, "ingest", "execute", "task has no path", nil)
	}

	data := t.content
	if data == nil {
		var err error
		data, err = os.ReadFile(t.path)
		if err != nil {
			marker := services.ErrTransient
			if os.IsNotExist(err) {
				marker = services.ErrNotFound
			}
			return services.Wrap(marker, "ingest", "execute", "read file", err)
		}
	}

	report := Analyze(t.path, data)
	t.logger.Info("file analyzed",
		logging.String(logging.FieldItemID, t.id),
		logging.String(logging.FieldPath, t.path),
		logging.String("title", report.Title),
		logging.String("sha256", report.SHA256),
		logging.Int("bytes", report.Bytes),
		logging.Int("lines", report.Lines),
		logging.Int("words", report.Words),
		logging.Bool("valid_utf8", report.ValidUTF8),
	)
	return nil
}

// Report summarizes one analyzed file.
type Report struct {
	Title     string
	SHA256    string
	Bytes     int
	Lines     int
	Words     int
	ValidUTF8 bool
}

// Analyze measures content without touching the filesystem.
func Analyze(path string, content []byte) Report {
	sum := sha256.Sum256(content)
	return Report{
		Title:     DeriveTitle(path),
		SHA256:    hex.EncodeToString(sum[:]),
		Bytes:     len(content),
		Lines:     countLines(content),
		Words:     countWords(content),
		ValidUTF8: utf8.Valid(content),
	}
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	lines := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		lines++
	}
	return lines
}

func countWords(content []byte) int {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Split(bufio.ScanWords)
	words := 0
	for scanner.Scan() {
		words++
	}
	return words
}
