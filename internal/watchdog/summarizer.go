// Package watchdog summarizes the append-only log written by the network watchdog.
//
// The log belongs to the watchdog process. It is only ever read here, from
// scratch on every call, so concurrent appends need no coordination.
package watchdog

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultRecentEntries is the number of lines returned by Recent when n <= 0.
const DefaultRecentEntries = 20

// RestartMarker identifies lines logged when the watchdog restarted networking.
const RestartMarker = "Network down"

const (
	msgNotFound  = "Log file not found"
	msgNoEntries = "No entries yet"
)

// Summary is the derived health view of the log.
type Summary struct {
	LastMessage  string
	RestartCount int
}

// Summarizer reads the watchdog log at a fixed path.
type Summarizer struct {
	path string
}

// New creates a Summarizer for the log at path.
func New(path string) *Summarizer {
	return &Summarizer{path: path}
}

// Path returns the log file location.
func (s *Summarizer) Path() string {
	return s.path
}

// Summarize reports the restart count and the message of the newest entry.
// Read problems degrade to a descriptive LastMessage; they are never returned.
func (s *Summarizer) Summarize() Summary {
	lines, err := s.readLines()
	if errors.Is(err, fs.ErrNotExist) {
		return Summary{LastMessage: msgNotFound}
	}
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Failed to read watchdog log")
		return Summary{LastMessage: readError(err)}
	}
	if len(lines) == 0 {
		return Summary{LastMessage: msgNoEntries}
	}

	restarts := 0
	for _, line := range lines {
		if strings.Contains(line, RestartMarker) {
			restarts++
		}
	}

	return Summary{
		LastMessage:  messageOf(strings.TrimSpace(lines[len(lines)-1])),
		RestartCount: restarts,
	}
}

// Recent returns up to n of the newest entries, newest first.
// A missing log yields an empty slice; a read failure yields a single entry describing it.
func (s *Summarizer) Recent(n int) []string {
	if n <= 0 {
		n = DefaultRecentEntries
	}

	lines, err := s.readLines()
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}
	}
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Failed to read watchdog log")
		return []string{readError(err)}
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	out := make([]string, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		out = append(out, strings.TrimSpace(lines[i]))
	}
	return out
}

// readLines returns the file split into lines. A trailing newline does not
// produce an empty final line; an empty file has no lines.
func (s *Summarizer) readLines() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	lines := strings.Split(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// messageOf strips the "<timestamp>: " prefix of an entry.
func messageOf(line string) string {
	if _, msg, ok := strings.Cut(line, ": "); ok {
		return msg
	}
	return line
}

func readError(err error) string {
	return "Error reading log: " + err.Error()
}
