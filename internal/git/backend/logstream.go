package backend

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// LogFormat is the pretty format the log capture must be produced with,
// together with "git log -z --boundary". Records are NUL-terminated; the %m
// marker is '-' for boundary commits.
const LogFormat = "%m%H%n%P%n%an%n%ae%n%aI%n%cn%n%ce%n%cI%n%B"

type logStream struct {
	closer io.Closer
	r      *bufio.Reader
}

// NewLogStream decodes NUL-delimited log records from r. If r is an
// io.Closer it is closed by Close.
func NewLogStream(r io.Reader) LogStream {
	s := &logStream{r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *logStream) Next() (*Commit, error) {
	for {
		rec, err := s.r.ReadBytes(0)
		if err != nil && err != io.EOF {
			return nil, err
		}
		atEOF := err == io.EOF
		if !atEOF {
			// Strip trailing NUL.
			rec = rec[:len(rec)-1]
		}
		// git log prints a newline between commits even when the format ends with NUL,
		// so subsequent records can start with '\n'.
		for len(rec) > 0 && (rec[0] == '\n' || rec[0] == '\r') {
			rec = rec[1:]
		}
		if len(rec) == 0 {
			if atEOF {
				return nil, io.EOF
			}
			continue
		}
		return parseGitLogRecord(rec)
	}
}

func (s *logStream) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

func parseGitLogRecord(rec []byte) (*Commit, error) {
	parts := strings.Split(string(rec), "\n")
	if len(parts) < 8 {
		return nil, fmt.Errorf("unexpected git log record: got %d lines", len(parts))
	}
	hashStr := strings.TrimSpace(parts[0])
	boundary := false
	if hashStr != "" {
		switch hashStr[0] {
		case '-':
			boundary = true
			hashStr = hashStr[1:]
		case '<', '>':
			hashStr = hashStr[1:]
		}
	}
	if hashStr == "" {
		return nil, fmt.Errorf("missing commit hash")
	}
	var parents []string
	parentLine := strings.TrimSpace(parts[1])
	if parentLine != "" {
		parents = append(parents, strings.Fields(parentLine)...)
	}
	authorWhen, _ := time.Parse(time.RFC3339, parts[4])
	committerWhen, _ := time.Parse(time.RFC3339, parts[7])
	message := ""
	if len(parts) > 8 {
		message = strings.Join(parts[8:], "\n")
	}
	return &Commit{
		Hash:         hashStr,
		ParentHashes: parents,
		Author:       Signature{Name: parts[2], Email: parts[3], When: authorWhen},
		Committer:    Signature{Name: parts[5], Email: parts[6], When: committerWhen},
		Message:      message,
		Boundary:     boundary,
	}, nil
}
