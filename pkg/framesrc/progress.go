package framesrc

import(
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminal returns the file behind w if it is a terminal.
func terminal(w io.Writer) (*os.File, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}
	return f, true
}

// terminalWidth is the width of the terminal behind f, or 80 if it
// can't be asked.
func terminalWidth(f *os.File) int {
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
		return cols
	}
	return 80
}

// ProgressBar draws a fish swimming across the line, e.g.
// " 42% [~~~~~~~~><>             ]", filling cols columns.
func ProgressBar(done, total, cols int) string {
	if total <= 0 {
		total = 1
	}
	str := fmt.Sprintf("\r%3d%%", done*100/total)
	if cols <= 11 {
		return str
	}

	pos := 2 + done*(cols-10)/total
	str += " [" + strings.Repeat("~", pos-2) + "><>"
	if n := cols - 6 - (pos + 2); n > 0 {
		str += strings.Repeat(" ", n)
	}
	return str + "]"
}

func (s *Source)showProgress() {
	if s.Progress == nil {
		return
	}
	done, total := s.next-1, s.Steps()

	f, ok := terminal(s.Progress)
	if !ok {
		fmt.Fprintf(s.Progress, "%d\n", done*100/total)
		return
	}

	fmt.Fprint(s.Progress, ProgressBar(done, total, terminalWidth(f)))
	if done >= total {
		fmt.Fprintln(s.Progress)
	}
}
