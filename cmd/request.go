package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vedsharma/reqpad/internal/curl"
	"github.com/vedsharma/reqpad/internal/model"
)

// requestFlags are shared by the ad-hoc method commands and edit
type requestFlags struct {
	headers  []string
	data     string
	forms    []string
	queries  []string
	jsonBody bool
}

var (
	adHoc          requestFlags
	adHocNoHistory bool
	adHocSave      bool
	adHocFilter    string
)

func init() {
	for _, method := range model.Methods {
		method := method
		methodCmd := &cobra.Command{
			Use:   strings.ToLower(method.String()) + " <url>",
			Short: fmt.Sprintf("Send a %s request", method),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRequest(cmd, method, args[0])
			},
		}
		addRequestFlags(methodCmd, &adHoc)
		methodCmd.Flags().BoolVar(&adHocNoHistory, "no-history", false, "Don't save to history")
		methodCmd.Flags().BoolVarP(&adHocSave, "save", "s", false, "Also save the request to the workspace")
		methodCmd.Flags().StringVarP(&adHocFilter, "filter", "f", "", "Print only this path of a JSON response")
		rootCmd.AddCommand(methodCmd)
	}
}

func addRequestFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Add header 'Key: Value' (can be used multiple times)")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "Request body (string or @filename)")
	cmd.Flags().StringArrayVarP(&f.forms, "form", "F", nil, "Add multipart field key=value or key=@path")
	cmd.Flags().StringArrayVarP(&f.queries, "query", "q", nil, "Add query parameter key=value")
	cmd.Flags().BoolVar(&f.jsonBody, "json", false, "Send --data as application/json")
}

func runRequest(cmd *cobra.Command, method model.Method, rawURL string) error {
	spec := model.NewHttp()
	spec.URL = rawURL
	spec.SetMethod(method)
	if method != model.GET {
		spec.ParamType = model.None
	}
	if err := adHoc.apply(spec); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	if adHocSave {
		if err := store.SaveRequest(spec); err != nil {
			return fmt.Errorf("failed to save request: %w", err)
		}
	}

	opts := sendOptions{filter: adHocFilter, verbose: cfg.Verbose}
	if !adHocNoHistory {
		warnIfSensitiveBody(spec.TextParam)
		opts.history = store
	}
	return sendOne(cmd.Context(), spec, opts)
}

// apply copies the flags onto spec. Only one of --data, --form and --query
// may be given since a request carries a single kind of parameter.
func (f *requestFlags) apply(spec *model.Http) error {
	for _, h := range f.headers {
		key, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid header %q, expected 'Key: Value'", h)
		}
		spec.AddHeader(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	kinds := 0
	for _, set := range []bool{f.data != "", len(f.forms) > 0, len(f.queries) > 0} {
		if set {
			kinds++
		}
	}
	if kinds > 1 {
		return fmt.Errorf("only one of --data, --form and --query may be used")
	}

	switch {
	case f.data != "":
		body := f.data
		if filename, ok := strings.CutPrefix(body, "@"); ok {
			content, err := readBodyFromFile(filename)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			body = content
		}
		spec.ParamType = model.Other
		if f.jsonBody {
			spec.ParamType = model.Json
		}
		spec.TextParam = body
		spec.FormParams = nil
	case len(f.forms) > 0:
		spec.ParamType = model.FormData
		spec.FormParams = nil
		for _, field := range f.forms {
			key, value := curl.SplitFirst("=", field)
			if key == "" {
				return fmt.Errorf("invalid form field %q, expected key=value or key=@path", field)
			}
			if path, ok := strings.CutPrefix(value, "@"); ok {
				spec.FormParams = append(spec.FormParams, model.FileParam(key, path))
			} else {
				spec.FormParams = append(spec.FormParams, model.TextParam(key, value))
			}
		}
	case len(f.queries) > 0:
		spec.ParamType = model.Query
		spec.FormParams = nil
		for _, q := range f.queries {
			key, value := curl.SplitFirst("=", q)
			if key == "" {
				return fmt.Errorf("invalid query parameter %q, expected key=value", q)
			}
			spec.FormParams = append(spec.FormParams, model.TextParam(key, value))
		}
	case f.jsonBody:
		spec.ParamType = model.Json
	}
	return nil
}

// readBodyFromFile reads file content with path validation to prevent directory traversal
func readBodyFromFile(filename string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)

	if !withinDir(cleanPath, wd) {
		return "", fmt.Errorf("access denied: file must be within current directory")
	}

	realPath, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to resolve path: %w", err)
		}
		realPath = cleanPath
	} else if !withinDir(realPath, wd) {
		return "", fmt.Errorf("access denied: symlink target must be within current directory")
	}

	content, err := os.ReadFile(realPath)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func withinDir(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

// sensitiveBodyPatterns suggest a body holds credentials
var sensitiveBodyPatterns = []string{
	"password", "passwd", "secret", "token", "api_key", "apikey",
	"private_key", "credit_card", "card_number", "client_secret",
}

// warnIfSensitiveBody warns that a body which looks like it carries
// credentials is about to be stored in history
func warnIfSensitiveBody(body string) {
	if body == "" {
		return
	}

	lowerBody := strings.ToLower(body)
	for _, pattern := range sensitiveBodyPatterns {
		if strings.Contains(lowerBody, pattern) {
			fmt.Fprintln(os.Stderr, "WARNING: Request body may contain sensitive data (e.g., passwords, tokens). This will be stored in history.")
			fmt.Fprintln(os.Stderr, "         Use --no-history flag to skip storing this request.")
			return
		}
	}
}
