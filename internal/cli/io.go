package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoInput = errors.New("no input available for confirmation (use --yes)")

// IO handles command output with warnings that stay visible when output is
// piped through head or tail.
type IO struct {
	in       *bufio.Reader
	prompt   func(string) (string, error)
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool
}

// NewIO creates a new IO instance. in may be nil.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	o := &IO{out: out, errOut: errOut}
	if in != nil {
		o.in = bufio.NewReader(in)
	}

	return o
}

// Warn records a warning.
//
// Parameters:
//   - issue: what went wrong
//   - action: what the user should do about it
//
// Warnings are printed to stderr at both the START and END of output.
// Any warnings cause exit code 1.
//
// Output to stdout (via Println) still occurs - warnings don't suppress
// normal output.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, fmt.Sprintf("%s: %s", issue, action))
}

// Println writes to stdout. On first call, any collected warnings
// are printed to stderr first.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout. On first call, any collected
// warnings are printed to stderr first.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Writer returns stdout for encoders.
func (o *IO) Writer() io.Writer {
	o.flushWarningsStart()
	return o.out
}

// sub returns an IO sharing o's input and writers with no warnings, for
// one command of an interactive session.
func (o *IO) sub() *IO {
	return &IO{in: o.in, prompt: o.prompt, out: o.out, errOut: o.errOut}
}

// Confirm prints prompt followed by " [y/N] " and reads one line.
// Only "y" and "yes" (any case) confirm.
func (o *IO) Confirm(prompt string) (bool, error) {
	var (
		line string
		err  error
	)

	switch {
	case o.prompt != nil:
		line, err = o.prompt(prompt + " [y/N] ")
	case o.in != nil:
		_, _ = fmt.Fprint(o.errOut, prompt+" [y/N] ")
		line, err = o.ReadLine()
	default:
		return false, errNoInput
	}

	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, errNoInput
		}

		return false, fmt.Errorf("reading confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ReadLine reads one line from stdin without the trailing newline.
func (o *IO) ReadLine() (string, error) {
	if o.in == nil {
		return "", io.EOF
	}

	line, err := o.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// Finish prints warnings to stderr and returns exit code.
// Returns 1 if any warnings, 0 otherwise.
func (o *IO) Finish() int {
	// If no output happened but we have warnings, print them at "start" position
	o.flushWarningsStart()

	// Always print at end
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}

		o.started = true
	}
}
