package flog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const backupTimeFormat = "2006-01-02T15-04-05.000"

// AsyncFileWriter is a rotating, channel-buffered io.Writer: callers never
// block on disk I/O, a background goroutine owns the file handle, and
// backups beyond maxBackups are pruned after each rotation. It plays the
// same role go-ethereum's own log package gives its async file writer —
// an io.Writer a Logger can be pointed at instead of (or in addition to)
// the terminal.
type AsyncFileWriter struct {
	filePath    string
	maxSizeMB   int
	maxBackups  int
	rotateHours uint

	msgCh  chan []byte
	stopCh chan struct{}
	doneCh chan struct{}
	wg     sync.WaitGroup

	file         *os.File
	size         int64
	lastRotation time.Time
}

// NewAsyncFileWriter returns a writer for filePath that rotates once the
// file exceeds maxSizeMB megabytes, or, when rotateHours is non-zero, once
// the clock is in the hour rotateHours after the last rotation and at
// least an hour has passed since it (checked once a minute), keeping at
// most maxBackups rotated files.
func NewAsyncFileWriter(filePath string, maxSizeMB, maxBackups int, rotateHours uint) *AsyncFileWriter {
	return &AsyncFileWriter{
		filePath:    filePath,
		maxSizeMB:   maxSizeMB,
		maxBackups:  maxBackups,
		rotateHours: rotateHours,
		msgCh:       make(chan []byte, 1024),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start opens the target file and launches the background writer loop.
func (w *AsyncFileWriter) Start() error {
	if err := os.MkdirAll(filepath.Dir(w.filePath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err == nil {
		w.size = info.Size()
	}
	w.file = f
	w.lastRotation = time.Now()

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Write enqueues p for the background goroutine to persist. It never
// blocks on disk I/O; it blocks only if the internal buffer is full or
// returns an error once the writer has been stopped.
func (w *AsyncFileWriter) Write(p []byte) (int, error) {
	select {
	case <-w.doneCh:
		return 0, os.ErrClosed
	default:
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	select {
	case w.msgCh <- buf:
		return len(p), nil
	case <-w.doneCh:
		return 0, os.ErrClosed
	}
}

// Stop signals the background goroutine to drain pending writes, closes
// the file, and blocks until that has happened.
func (w *AsyncFileWriter) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	w.wg.Wait()
}

func (w *AsyncFileWriter) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case b := <-w.msgCh:
			w.writeAndMaybeRotate(b)
		case <-ticker.C:
			w.maybeRotateByHour()
		case <-w.stopCh:
			w.drain()
			if w.file != nil {
				w.file.Close()
			}
			close(w.doneCh)
			return
		}
	}
}

func (w *AsyncFileWriter) drain() {
	for {
		select {
		case b := <-w.msgCh:
			w.writeAndMaybeRotate(b)
		default:
			return
		}
	}
}

func (w *AsyncFileWriter) writeAndMaybeRotate(b []byte) {
	if w.file == nil {
		return
	}
	n, _ := w.file.Write(b)
	w.size += int64(n)

	maxBytes := int64(w.maxSizeMB) * 1024 * 1024
	if maxBytes > 0 && w.size >= maxBytes {
		w.rotate()
	}
}

func (w *AsyncFileWriter) maybeRotateByHour() {
	if w.rotateHours == 0 {
		return
	}
	now := time.Now()
	next := getNextRotationHour(w.lastRotation, w.rotateHours)
	if now.Hour() == next && now.Sub(w.lastRotation) >= time.Hour {
		w.rotate()
	}
}

func (w *AsyncFileWriter) rotate() {
	if w.file != nil {
		w.file.Close()
	}
	backupName := w.filePath + "." + time.Now().Format(backupTimeFormat)
	os.Rename(w.filePath, backupName)

	f, err := os.OpenFile(w.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		w.file = f
		w.size = 0
	}
	w.lastRotation = time.Now()
	w.removeExpiredFile()
}

// getNextRotationHour returns the hour-of-day (0-23) at which the next
// rotation after now is due, given a rotation cadence of delta hours.
func getNextRotationHour(now time.Time, delta uint) int {
	return (now.Hour() + int(delta)) % 24
}

// getExpiredFile returns the oldest backup of filePath if more than
// maxBackups backups exist, or "" if retention is satisfied.
func (w *AsyncFileWriter) getExpiredFile(filePath string, maxBackups int, rotateHours uint) string {
	backups := w.listBackups(filePath)
	if len(backups) <= maxBackups {
		return ""
	}
	return backups[len(backups)-1]
}

// removeExpiredFile deletes every backup beyond the retention window.
func (w *AsyncFileWriter) removeExpiredFile() {
	backups := w.listBackups(w.filePath)
	if len(backups) <= w.maxBackups {
		return
	}
	for _, path := range backups[w.maxBackups:] {
		os.Remove(path)
	}
}

// listBackups returns filePath's rotated backups, newest first.
func (w *AsyncFileWriter) listBackups(filePath string) []string {
	dir := filepath.Dir(filePath)
	base := filepath.Base(filePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	prefix := base + "."
	type backup struct {
		path string
		t    time.Time
	}
	var found []backup
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		ts := strings.TrimPrefix(name, prefix)
		t, err := time.Parse(backupTimeFormat, ts)
		if err != nil {
			continue
		}
		found = append(found, backup{path: filepath.Join(dir, name), t: t})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].t.After(found[j].t) })
	out := make([]string, len(found))
	for i, b := range found {
		out[i] = b.path
	}
	return out
}
