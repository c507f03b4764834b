package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// AccessEntry is one completed HTTP request as written to the access log.
// Prompt bodies are never recorded; history persistence keeps a hash instead.
type AccessEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	RemoteAddr string    `json:"remote_addr"`
	Status     int       `json:"status"`
	DurationMS int64     `json:"duration_ms"`
}

// AccessLogger writes JSONL access entries asynchronously with size-based
// rotation and a periodic flush. Entries are dropped rather than blocking
// the request path when the buffer is full.
type AccessLogger struct {
	fileTemplate  string        // e.g. "/var/log/nexusai/access-%s.jsonl"
	maxSize       int64         // bytes before rotation
	maxFiles      int           // rotated files to keep
	flushInterval time.Duration

	mu          sync.Mutex
	currentFile string
	file        *os.File
	writer      *bufio.Writer
	currentSize int64

	entryCh chan AccessEntry
	doneCh  chan struct{}
	wg      sync.WaitGroup
	closed  bool
}

// NewAccessLogger creates an AccessLogger writing to files derived from
// fileTemplate, which must contain a single %s for the rotation timestamp.
// bufferSize determines how many entries can be queued before drops begin.
func NewAccessLogger(fileTemplate string, maxSize int64, maxFiles, bufferSize int, flushInterval time.Duration) (*AccessLogger, error) {
	al := &AccessLogger{
		fileTemplate:  fileTemplate,
		maxSize:       maxSize,
		maxFiles:      maxFiles,
		flushInterval: flushInterval,
		entryCh:       make(chan AccessEntry, bufferSize),
		doneCh:        make(chan struct{}),
	}

	if err := al.openFile(); err != nil {
		return nil, err
	}

	al.wg.Add(1)
	go al.run()

	return al, nil
}

func (al *AccessLogger) newFileName() string {
	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf(al.fileTemplate, timestamp)
}

func (al *AccessLogger) openFile() error {
	al.currentFile = al.newFileName()
	dir := filepath.Dir(al.currentFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(al.currentFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	al.currentSize = fi.Size()
	al.file = file
	al.writer = bufio.NewWriter(file)
	return nil
}

// rotateIfNeeded rotates the active file when writing n more bytes would
// exceed maxSize. The replacement file carries a fresh timestamp.
func (al *AccessLogger) rotateIfNeeded(n int) error {
	al.mu.Lock()
	defer al.mu.Unlock()

	if al.currentSize+int64(n) < al.maxSize {
		return nil
	}

	if err := al.writer.Flush(); err != nil {
		return err
	}
	if err := al.file.Close(); err != nil {
		return err
	}
	return al.openFile()
}

// cleanupOldFiles prunes the oldest rotated files past maxFiles.
func (al *AccessLogger) cleanupOldFiles() error {
	pattern := fmt.Sprintf(al.fileTemplate, "*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	sort.Slice(matches, func(i, j int) bool {
		fi, err1 := os.Stat(matches[i])
		fj, err2 := os.Stat(matches[j])
		if err1 != nil || err2 != nil {
			return false
		}
		return fi.ModTime().Before(fj.ModTime())
	})

	excess := len(matches) - al.maxFiles
	for i := 0; i < excess; i++ {
		_ = os.Remove(matches[i])
	}
	return nil
}

func (al *AccessLogger) run() {
	defer al.wg.Done()
	ticker := time.NewTicker(al.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-al.entryCh:
			al.writeEntry(entry)
		case <-ticker.C:
			al.mu.Lock()
			_ = al.writer.Flush()
			al.mu.Unlock()
		case <-al.doneCh:
			// Drain remaining entries before closing the file.
			for {
				select {
				case entry := <-al.entryCh:
					al.writeEntry(entry)
				default:
					al.mu.Lock()
					_ = al.writer.Flush()
					_ = al.file.Close()
					al.mu.Unlock()
					return
				}
			}
		}
	}
}

func (al *AccessLogger) writeEntry(entry AccessEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	line := string(data) + "\n"
	n := len(line)
	_ = al.rotateIfNeeded(n)

	al.mu.Lock()
	_, _ = al.writer.WriteString(line)
	al.currentSize += int64(n)
	al.mu.Unlock()

	_ = al.cleanupOldFiles()
}

// Log queues an entry. If the buffer is full the entry is dropped.
func (al *AccessLogger) Log(entry AccessEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	select {
	case al.entryCh <- entry:
	default:
	}
}

// Shutdown flushes the buffer and closes the file. Safe to call more
// than once; call it from the graceful shutdown path.
func (al *AccessLogger) Shutdown() {
	al.mu.Lock()
	if al.closed {
		al.mu.Unlock()
		return
	}
	al.closed = true
	al.mu.Unlock()

	close(al.doneCh)
	al.wg.Wait()
}
