package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

const attachCommand = "/attach"

// expandAttach replaces a trailing "/attach <path>" line with an upload note.
// ok is false when the composer holds no attach command.
func expandAttach(value string) (updated string, ok bool, err error) {
	lines := strings.Split(strings.TrimRight(value, "\n"), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])

	if last != attachCommand && !strings.HasPrefix(last, attachCommand+" ") {
		return value, false, nil
	}

	path := strings.TrimSpace(strings.TrimPrefix(last, attachCommand))
	if path == "" {
		return value, true, fmt.Errorf("usage: %s <path>", attachCommand)
	}

	info, err := os.Stat(path)
	if err != nil {
		return value, true, fmt.Errorf("cannot attach %s: %w", path, err)
	}
	if info.IsDir() {
		return value, true, fmt.Errorf("cannot attach %s: is a directory", path)
	}

	lines[len(lines)-1] = fmt.Sprintf("Uploaded file: %s (%s)", filepath.Base(path), humanize.Bytes(uint64(info.Size())))
	return strings.Join(lines, "\n"), true, nil
}
