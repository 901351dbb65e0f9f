package rxexport

import (
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/models"
)

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// OSC52Clipboard sets the terminal clipboard with an OSC 52 escape sequence.
// Inside tmux or screen the sequence is wrapped for passthrough.
type OSC52Clipboard struct {
	Out    io.Writer
	Getenv func(string) string
}

// NewTerminalClipboard writes to the controlling terminal, bypassing any
// program that owns stdout.
func NewTerminalClipboard() *OSC52Clipboard {
	return &OSC52Clipboard{Out: ttyWriter{}, Getenv: os.Getenv}
}

func (c *OSC52Clipboard) WriteText(text string) error {
	getenv := c.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	seq := osc52.New(text)
	term := getenv("TERM")
	switch {
	case getenv("TMUX") != "" || strings.HasPrefix(term, "tmux"):
		seq = seq.Tmux()
	case strings.HasPrefix(term, "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(c.Out)
	return err
}

type ttyWriter struct{}

func (ttyWriter) Write(p []byte) (int, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return 0, err
	}
	defer tty.Close()
	return tty.Write(p)
}

// CopyLast copies the newest message text verbatim. It returns false when
// there is nothing to copy. Clipboard failures are ignored.
func CopyLast(cb Clipboard, messages []models.Message) bool {
	if len(messages) == 0 || cb == nil {
		return false
	}
	if err := cb.WriteText(messages[0].Message); err != nil {
		logger := logging.Component("rxexport")
		logger.Debug().Err(err).Msg("clipboard write failed")
	}
	return true
}
