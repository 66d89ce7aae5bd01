package logx

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Open creates a logger appending to the given file, creating it if absent.
// Each switch logs to its own plain build log this way. The returned closer
// should be closed when logging is no longer needed.
func Open(path string) (*log.Logger, io.Closer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	return logger, file, nil
}
