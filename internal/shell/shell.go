// Package shell splits command lines into words using /bin/sh quoting rules.
package shell

import (
	"errors"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ErrMismatchedQuotes is matched by every *MismatchedQuotesError
var ErrMismatchedQuotes = errors.New("mismatched quotes")

// MismatchedQuotesError reports a quote or escape that is never closed
type MismatchedQuotesError struct {
	Err error
}

func (e *MismatchedQuotesError) Error() string {
	return "mismatched quotes: " + e.Err.Error()
}

func (e *MismatchedQuotesError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrMismatchedQuotes) succeed
func (e *MismatchedQuotesError) Is(target error) bool {
	return target == ErrMismatchedQuotes
}

// Split breaks command into words. Single quotes, double quotes and backslash
// escapes are honored; unquoted spaces, tabs and newlines separate words and a
// backslash-newline continues the line.
func Split(command string) ([]string, error) {
	command = strings.ReplaceAll(command, "\r\n", "\n")

	words, err := shellquote.Split(command)
	if err != nil {
		switch err {
		case shellquote.UnterminatedSingleQuoteError,
			shellquote.UnterminatedDoubleQuoteError,
			shellquote.UnterminatedEscapeError:
			return nil, &MismatchedQuotesError{Err: err}
		}
		return nil, err
	}
	return words, nil
}

// Join quotes words so that Split(Join(words...)) returns words
func Join(words ...string) string {
	return shellquote.Join(words...)
}
