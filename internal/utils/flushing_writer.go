package utils

import (
	"io"
	"sync"
)

// FlushingWriter forwards writes and flushes the destination after each one when it supports flushing.
// Child process output streamed through it appears on the terminal while the process is still running.
type FlushingWriter struct {
	destination io.Writer
	mutex       sync.Mutex
}

type flusher interface {
	Flush() error
}

// NewFlushingWriter wraps destination. Nil destinations yield nil so callers can skip streaming entirely.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return nil
	}
	if _, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write delegates to the destination and flushes it when possible.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.destination == nil {
		return len(data), nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	bytesWritten, writeError := writer.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushableDestination, supportsFlush := writer.destination.(flusher); supportsFlush {
		if flushError := flushableDestination.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}
