package kernel

import (
	"bytes"
	"sync"

	"go.uber.org/zap"
)

// streamLogger forwards lines written by a child process to the logger.
type streamLogger struct {
	log *zap.Logger

	mu  sync.Mutex
	buf []byte
}

func newStreamLogger(log *zap.Logger) *streamLogger {
	return &streamLogger{log: log}
}

func (s *streamLogger) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, p...)
	for {
		i := bytes.IndexByte(s.buf, '\n')
		if i < 0 {
			break
		}
		s.emit(s.buf[:i])
		s.buf = s.buf[i+1:]
	}

	return len(p), nil
}

// Flush logs the trailing line not terminated by a newline.
func (s *streamLogger) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buf) > 0 {
		s.emit(s.buf)
		s.buf = nil
	}
}

func (s *streamLogger) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(line) > 0 {
		s.log.Info(string(line))
	}
}
