package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Interactive reports whether stdin and stdout are both terminals.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

// Confirm asks a yes/no question on out and reads the answer from in.
// Anything but y or yes is a no.
func Confirm(in io.Reader, out io.Writer, message string) bool {
	if message == "" {
		message = "Apply changes?"
	}
	fmt.Fprintf(out, "%s %s ", message, Hint("[y/N]"))
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
