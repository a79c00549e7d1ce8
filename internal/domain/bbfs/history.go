package bbfs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrSourceUnavailable is returned by LoadFile when the history source is
// missing or unreadable. The accompanying history is empty, never nil, so
// callers can log the error and still run the analysis.
var ErrSourceUnavailable = errors.New("history source unavailable")

// LoadLines trims each line and drops the ones left empty. Order is kept.
func LoadLines(lines []string) []string {
	history := make([]string, 0, len(lines))
	for _, line := range lines {
		if token := strings.TrimSpace(line); token != "" {
			history = append(history, token)
		}
	}
	return history
}

// Load reads newline-separated history from r. Lines have no length limit.
// On a read error the lines read so far are returned with the error.
func Load(r io.Reader) ([]string, error) {
	history := []string{}
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if token := strings.TrimSpace(line); token != "" {
			history = append(history, token)
		}
		if err == io.EOF {
			return history, nil
		}
		if err != nil {
			return history, err
		}
	}
}

// LoadFile reads history from a file on disk. A missing or unreadable file
// yields an empty history and an error wrapping ErrSourceUnavailable.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return []string{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()

	history, err := Load(f)
	if err != nil {
		return []string{}, fmt.Errorf("%w: read %s: %v", ErrSourceUnavailable, path, err)
	}
	return history, nil
}
