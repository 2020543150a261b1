// Package curl imports curl command lines as editable requests.
//
// The importer understands the subset of curl flags that map onto the request
// model: headers, form fields, raw data and the request method. Anything else
// is skipped so that commands copied from browser dev tools import cleanly.
package curl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/vedsharma/reqpad/internal/model"
	"github.com/vedsharma/reqpad/internal/shell"
)

var (
	// ErrEmptyCommand is returned for an empty command line
	ErrEmptyCommand = errors.New("empty command")
	// ErrMalformed wraps tokenizer failures such as unbalanced quotes
	ErrMalformed = errors.New("malformed command")
	// ErrMissingURL is returned when no URL token is present
	ErrMissingURL = errors.New("no URL found in command")
	// ErrUnknownMethod is returned when -X names a method the editor does not support
	ErrUnknownMethod = errors.New("unknown method")
)

// Import parses a curl command line into a new request
func Import(command string) (*model.Http, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}

	tokens, err := shell.Split(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(tokens) > 0 && isProgramName(tokens[0]) {
		tokens = tokens[1:]
	}

	var (
		url             string
		hasURL          bool
		method          = "GET"
		headers         []model.Header
		textParam       string
		formParams      []model.FormParam
		contentTypeHint string
	)

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		// next consumes the flag argument, if there is one
		next := func() (string, bool) {
			if i+1 >= len(tokens) {
				return "", false
			}
			i++
			return tokens[i], true
		}

		switch token {
		case "-H", "--header":
			arg, ok := next()
			if !ok {
				continue
			}
			key, value := SplitFirst(":", arg)
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			if strings.Contains(strings.ToLower(key), "content-type") {
				contentTypeHint = value
			}
			headers = append(headers, model.Header{Key: key, Value: value})

		case "-F", "--form":
			arg, ok := next()
			if !ok {
				continue
			}
			formParams = append(formParams, parseFormField(arg))

		case "-d", "--data", "--data-raw":
			if arg, ok := next(); ok {
				textParam = arg
			}

		case "--data-binary":
			next()

		case "-X", "--request":
			if arg, ok := next(); ok {
				method = strings.ToUpper(arg)
			}

		default:
			if !strings.HasPrefix(token, "-") {
				url = token
				hasURL = true
			}
		}
	}

	if !hasURL {
		return nil, ErrMissingURL
	}
	m, err := model.ParseMethod(method)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}

	spec := model.NewHttp()
	spec.URL = url
	spec.Method = m
	spec.Headers = headers
	spec.TextParam = textParam
	spec.FormParams = formParams
	spec.ParamType = paramTypeFor(contentTypeHint)
	return spec, nil
}

// SplitFirst splits text around the first sep. If sep is absent the whole text
// is returned as before and after is empty.
func SplitFirst(sep, text string) (before, after string) {
	before, after, _ = strings.Cut(text, sep)
	return before, after
}

// parseFormField turns "name=value;type=..." or "name=@path;filename=..." into a form param
func parseFormField(arg string) model.FormParam {
	field, _ := SplitFirst(";", arg)
	key, value := SplitFirst("=", field)
	if p, ok := strings.CutPrefix(value, "@"); ok {
		return model.FileParam(key, p)
	}
	return model.TextParam(key, value)
}

func paramTypeFor(contentType string) model.ParamType {
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		return model.Json
	}
	return model.Other
}

func isProgramName(token string) bool {
	base := path.Base(strings.ReplaceAll(token, `\`, "/"))
	return strings.EqualFold(base, "curl") || strings.EqualFold(base, "curl.exe")
}

// ImportAll imports every command in r. Commands may span several lines with a
// trailing backslash; blank lines and lines starting with # are skipped.
// Commands that fail to import are reported in the returned error while the
// others are still returned.
func ImportAll(r io.Reader) ([]*model.Http, error) {
	commands, err := readCommands(r)
	if err != nil {
		return nil, err
	}

	var (
		specs []*model.Http
		errs  *multierror.Error
	)
	for i, cmd := range commands {
		spec, err := Import(cmd)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("command %d: %w", i+1, err))
			continue
		}
		specs = append(specs, spec)
	}
	return specs, errs.ErrorOrNil()
}

func readCommands(r io.Reader) ([]string, error) {
	var (
		commands []string
		current  strings.Builder
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if current.Len() == 0 && (line == "" || strings.HasPrefix(line, "#")) {
			continue
		}

		if body, ok := strings.CutSuffix(line, `\`); ok {
			current.WriteString(body)
			current.WriteString(" ")
			continue
		}

		current.WriteString(line)
		commands = append(commands, current.String())
		current.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}

	if current.Len() > 0 {
		commands = append(commands, current.String())
	}
	return commands, nil
}
