package msg

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Out is where all status output goes. Tests may swap it for io.Discard.
var Out io.Writer = color.Output

func line(tag string, format string, a ...any) {
	fmt.Fprint(Out, tag)
	fmt.Fprint(Out, ": ")
	fmt.Fprintf(Out, format, a...)
	fmt.Fprint(Out, "\n")
}

func Error(format string, a ...any) {
	line(color.HiRedString("error"), format, a...)
}

func Warn(format string, a ...any) {
	line(color.YellowString("warn"), format, a...)
}

func Fatal(format string, a ...any) {
	line(color.RedString("fatal"), format, a...)
	os.Exit(1)
}

func Info(format string, a ...any) {
	line(color.HiGreenString("info"), format, a...)
}

// Status prints a right-aligned green verb followed by a message, e.g.
//
//	 Configuring webrtc-src (meson)
func Status(verb, format string, a ...any) {
	fmt.Fprintf(Out, "%s %s\n", color.HiGreenString("%12s", verb), fmt.Sprintf(format, a...))
}

// IndentWriter prefixes every line written through it with Indent.
// Used to nest child process output under the stage that spawned it.
type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (int, error) {
	buf := make([]byte, 0, len(p)+len(w.Indent))
	for _, c := range p {
		if !w.didIndent {
			buf = append(buf, w.Indent...)
			w.didIndent = true
		}
		buf = append(buf, c)
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	if _, err := w.W.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
