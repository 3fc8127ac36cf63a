package lifecycle

import (
	"bufio"
	"bytes"
	"eigenkey/internal/models"
	"eigenkey/internal/structures"
	"io"
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const maxLogLine = 1 << 20

// UsageLog is the newline-delimited JSON audit log of usage events. The mutex
// only orders appends against Evict inside this process.
type UsageLog struct {
	path string
	mu   sync.Mutex
}

func NewUsageLog(conf *structures.Config) *UsageLog {
	return &UsageLog{path: conf.Persistence.UsageLogPath}
}

func (u *UsageLog) Path() string {
	return u.path
}

func (u *UsageLog) Append(event *models.UsageEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	u.mu.Lock()
	defer u.mu.Unlock()

	file, err := os.OpenFile(u.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err = file.Write(line); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Scan calls fn for every well-formed event in file order until fn returns
// false. Malformed lines are skipped. A missing log is empty.
func (u *UsageLog) Scan(fn func(event *models.UsageEvent) bool) error {
	file, err := os.Open(u.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	return scanEvents(file, fn)
}

// scanEvents reads one event per line. Lines longer than maxLogLine are
// discarded whole so one oversized entry cannot hide the rest of the log.
func scanEvents(r io.Reader, fn func(event *models.UsageEvent) bool) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := readLogLine(reader)
		if err != nil && err != io.EOF {
			return err
		}
		if line = bytes.TrimSpace(line); len(line) > 0 {
			var event models.UsageEvent
			if json.Unmarshal(line, &event) == nil && !fn(&event) {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

// readLogLine returns the next line, or nil when it exceeds maxLogLine.
func readLogLine(reader *bufio.Reader) ([]byte, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLogLine {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return line, err
	}
}

// Evict hands every line older than cutoff to sink and, once sink succeeds,
// rewrites the log with the remaining lines. Lines without a readable
// timestamp count as old. It returns the number of evicted lines.
func (u *UsageLog) Evict(cutoff time.Time, sink func(lines [][]byte) error) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	data, err := os.ReadFile(u.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	var old, keep [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var event models.UsageEvent
		if err := json.Unmarshal(line, &event); err == nil {
			if ts, err := event.Time(cutoff.Location()); err == nil && !ts.Before(cutoff) {
				keep = append(keep, line)
				continue
			}
		}
		old = append(old, line)
	}

	if len(old) == 0 {
		return 0, nil
	}
	if err := sink(old); err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	for _, line := range keep {
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := writeFileAtomic(u.path, buf.Bytes()); err != nil {
		return 0, err
	}
	return len(old), nil
}
