// File: internal/ui/prompt/prompt.go
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Defines the interface for prompting the user for input
type Prompter interface {
	// Asks the user for confirmation by requiring them to type a specific expected value
	Confirm(message string, expectedValue string) (bool, error)
}

// Provides a standard implementation of the Prompter interface using specified input/output streams
type StandardPrompter struct {
	reader io.Reader
	writer io.Writer
}

// Creates a new StandardPrompter with the given input and output streams
func NewStandardPrompter(in io.Reader, out io.Writer) *StandardPrompter {
	return &StandardPrompter{
		reader: in,
		writer: out,
	}
}

// Asks the user for confirmation by requiring them to type a specific expected value.
// End of input counts as a refusal
func (p *StandardPrompter) Confirm(message string, expectedValue string) (bool, error) {
	if expectedValue == "" {
		return false, fmt.Errorf("expected confirmation value cannot be empty")
	}

	fmt.Fprintln(p.writer, message)
	fmt.Fprintf(p.writer, "To confirm, please type '%s': ", expectedValue)

	input, err := bufio.NewReader(p.reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("error reading user input: %w", err)
	}

	return strings.TrimSpace(input) == expectedValue, nil
}
