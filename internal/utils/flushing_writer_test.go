package utils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/crates-smoke/internal/utils"
)

type recordingFlushBuffer struct {
	bytes.Buffer
	flushCount int
}

func (buffer *recordingFlushBuffer) Flush() error {
	buffer.flushCount++
	return nil
}

func TestFlushingWriterFlushesEachWrite(testInstance *testing.T) {
	destination := &recordingFlushBuffer{}
	writer := utils.NewFlushingWriter(destination)

	_, firstWriteError := writer.Write([]byte("Updating index\n"))
	require.NoError(testInstance, firstWriteError)
	_, secondWriteError := writer.Write([]byte("Uploading crate\n"))
	require.NoError(testInstance, secondWriteError)

	require.Equal(testInstance, "Updating index\nUploading crate\n", destination.String())
	require.Equal(testInstance, 2, destination.flushCount)
}

func TestFlushingWriterNilDestination(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}
