package cargo

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/zerr"
)

const maxMessageSize = 16 << 20

// message is one line of cargo's --message-format=json stream.
type message struct {
	Reason    string   `json:"reason"`
	Filenames []string `json:"filenames"`
	Success   *bool    `json:"success"`
}

// progress is what the message stream reported.
type progress struct {
	Artifacts []string
	Finished  bool
	Success   bool
}

// readMessages consumes the whole stream. A line that is not a JSON message fails the build.
func readMessages(r io.Reader, debug func(string)) (progress, error) {
	var p progress

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg message
		if err := json.Unmarshal(line, &msg); err != nil {
			return p, zerr.With(errors.Join(domain.ErrProgressStream, err), "line", string(line))
		}

		switch msg.Reason {
		case "compiler-artifact":
			p.Artifacts = append(p.Artifacts, msg.Filenames...)
		case "build-finished":
			p.Finished = true
			p.Success = msg.Success != nil && *msg.Success
		default:
			debug("cargo: " + msg.Reason)
		}
	}
	if err := scanner.Err(); err != nil {
		return p, errors.Join(domain.ErrProgressStream, err)
	}
	return p, nil
}
