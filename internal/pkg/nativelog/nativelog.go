package nativelog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogDir          = "FOX_LOG_DIR"
	defaultLogFilePerm = 0o644
	defaultLogDirPerm  = 0o755
)

// Options controls where and how verbosely the logger writes.
type Options struct {
	Dir   string
	Debug bool
}

// ResolveDir resolves the log directory. An explicit dir wins over the
// environment, which wins over the first existing candidate.
func ResolveDir(dir string) string {
	if dir = strings.TrimSpace(dir); dir != "" {
		return dir
	}
	if dir := strings.TrimSpace(os.Getenv(EnvLogDir)); dir != "" {
		return dir
	}

	candidates := make([]string, 0, 3)
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates, filepath.Join(home, ".fox-site", "log"))
	}
	candidates = append(candidates, filepath.Join(".", "logs"), filepath.Join(".", "tmp", "log"))

	for _, dir := range candidates {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir
		}
	}
	return filepath.Join(".", "logs")
}

// TodayFilename returns the daily log filename.
func TodayFilename(now time.Time) string {
	return "stdout_" + now.Format("1-2-06") + ".log"
}

// Writer appends to the daily log file, rotating by date on each write.
type Writer struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

func NewWriter(dir string) (*Writer, error) {
	dir = ResolveDir(dir)
	if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
		return nil, err
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// Dir is the directory the writer appends to.
func (w *Writer) Dir() string { return w.dir }

func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Join(w.dir, TodayFilename(w.now()))
	var n int
	err := withProcessLogLock(w.dir, func() error {
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultLogFilePerm)
		if err != nil {
			return err
		}
		var writeErr error
		n, writeErr = file.Write(p)
		closeErr := file.Close()
		if writeErr != nil {
			return writeErr
		}
		return closeErr
	})
	return n, err
}

func (w *Writer) Sync() error {
	return nil
}

// NewZapLogger creates a zap logger writing to stdout and the daily log file.
func NewZapLogger(opts Options) (*zap.Logger, error) {
	writer, err := NewWriter(opts.Dir)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Debug {
		level.SetLevel(zap.DebugLevel)
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	core := zapcore.NewTee(
		zapcore.NewCore(newConsoleEncoder(shouldColor()), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(writer), level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}
