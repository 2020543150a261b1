package curl

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedsharma/reqpad/internal/model"
	"github.com/vedsharma/reqpad/internal/shell"
)

func strPtr(s string) *string {
	return &s
}

func TestSplitFirst(t *testing.T) {
	tc := []struct {
		sep, text     string
		before, after string
	}{
		{sep: ":", text: "X-Custom: a:b:c", before: "X-Custom", after: " a:b:c"},
		{sep: ":", text: "no-colon", before: "no-colon", after: ""},
		{sep: "=", text: "k=", before: "k", after: ""},
		{sep: "=", text: "=v", before: "", after: "v"},
		{sep: ";", text: "a=b;c=d;e", before: "a=b", after: "c=d;e"},
		{sep: ":", text: "", before: "", after: ""},
	}
	for _, c := range tc {
		before, after := SplitFirst(c.sep, c.text)
		assert.Equal(t, c.before, before, c.text)
		assert.Equal(t, c.after, after, c.text)
	}
}

func TestImport_HappyPath(t *testing.T) {
	spec, err := Import(`curl 'http://h/login' -X POST -H 'Content-Type: application/json' -d '{"a":1}'`)
	require.NoError(t, err)

	assert.Equal(t, model.POST, spec.Method)
	assert.Equal(t, "http://h/login", spec.URL)
	assert.Equal(t, model.Json, spec.ParamType)
	assert.Equal(t, `{"a":1}`, spec.TextParam)
	assert.Equal(t, []model.Header{{Key: "Content-Type", Value: "application/json"}}, spec.Headers)
	assert.NotEmpty(t, spec.ID())
	assert.Equal(t, model.DefaultName, spec.Name)
}

func TestImport_Errors(t *testing.T) {
	tc := []struct {
		name  string
		input string
		err   error
	}{
		{name: "empty", input: "", err: ErrEmptyCommand},
		{name: "blank", input: "   \n ", err: ErrEmptyCommand},
		{name: "missing url", input: `curl -X POST -d 'x'`, err: ErrMissingURL},
		{name: "only program", input: `curl`, err: ErrMissingURL},
		{name: "unknown method", input: `curl -X TRACE http://h`, err: ErrUnknownMethod},
		{name: "quotes", input: `curl -H 'unterminated`, err: ErrMalformed},
	}
	for _, c := range tc {
		spec, err := Import(c.input)
		assert.Nil(t, spec, c.name)
		assert.True(t, errors.Is(err, c.err), "%s: got %v", c.name, err)
	}
}

func TestImport_MalformedKeepsTokenizerError(t *testing.T) {
	_, err := Import(`curl -H 'unterminated`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shell.ErrMismatchedQuotes))
}

func TestImport_UnknownMethodNamesMethod(t *testing.T) {
	_, err := Import(`curl -X options http://h`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPTIONS")
}

func TestImport_MethodIsUppercased(t *testing.T) {
	spec, err := Import(`curl --request delete http://h/items/1`)
	require.NoError(t, err)
	assert.Equal(t, model.DELETE, spec.Method)
}

func TestImport_FormFields(t *testing.T) {
	spec, err := Import(`curl http://h/upload -F 'file=@report.pdf;type=application/pdf' --form name=bob -F 'empty='`)
	require.NoError(t, err)

	require.Len(t, spec.FormParams, 3)
	assert.Equal(t, model.FormParam{Key: "file", Value: "", Path: strPtr("report.pdf"), Kind: model.FormFile}, spec.FormParams[0])
	assert.Equal(t, model.FormParam{Key: "name", Value: "bob", Kind: model.FormText}, spec.FormParams[1])
	assert.Equal(t, model.FormParam{Key: "empty", Value: "", Kind: model.FormText}, spec.FormParams[2])

	// form fields alone never select form-data
	assert.Equal(t, model.Other, spec.ParamType)
}

func TestImport_HeadersKeepOrderAndDuplicates(t *testing.T) {
	spec, err := Import(`curl -H 'Accept: a' --header 'X-Time: 12:30:00' -H 'Accept: b' http://h`)
	require.NoError(t, err)

	assert.Equal(t, []model.Header{
		{Key: "Accept", Value: "a"},
		{Key: "X-Time", Value: "12:30:00"},
		{Key: "Accept", Value: "b"},
	}, spec.Headers)
}

func TestImport_ContentTypeHint(t *testing.T) {
	spec, err := Import(`curl http://h -H 'content-type: Application/JSON; charset=utf-8' -d '{}'`)
	require.NoError(t, err)
	assert.Equal(t, model.Json, spec.ParamType)

	spec, err = Import(`curl http://h -H 'Content-Type: text/plain' -d 'hello'`)
	require.NoError(t, err)
	assert.Equal(t, model.Other, spec.ParamType)
	assert.Equal(t, "hello", spec.TextParam)
}

func TestImport_LastDataWins(t *testing.T) {
	spec, err := Import(`curl http://h -d one --data two --data-raw three`)
	require.NoError(t, err)
	assert.Equal(t, "three", spec.TextParam)
}

func TestImport_DataBinaryIgnored(t *testing.T) {
	spec, err := Import(`curl http://h --data-binary '@payload.bin'`)
	require.NoError(t, err)
	assert.Empty(t, spec.TextParam)
	assert.Equal(t, "http://h", spec.URL)
}

func TestImport_LastURLWins(t *testing.T) {
	spec, err := Import(`curl http://first http://second -X PUT -X PATCH`)
	require.NoError(t, err)
	assert.Equal(t, "http://second", spec.URL)
	assert.Equal(t, model.PATCH, spec.Method)
}

func TestImport_UnknownFlagsSkipped(t *testing.T) {
	spec, err := Import(`curl --compressed -s -L 'https://h/x?a=1'`)
	require.NoError(t, err)
	assert.Equal(t, "https://h/x?a=1", spec.URL)
	assert.Equal(t, model.GET, spec.Method)
}

func TestImport_MissingFlagArgumentIgnored(t *testing.T) {
	spec, err := Import(`curl http://h -H`)
	require.NoError(t, err)
	assert.Empty(t, spec.Headers)
	assert.Equal(t, "http://h", spec.URL)
}

func TestImport_ProgramPath(t *testing.T) {
	spec, err := Import(`/usr/bin/curl http://h`)
	require.NoError(t, err)
	assert.Equal(t, "http://h", spec.URL)
}

func TestImport_MultilineCommand(t *testing.T) {
	spec, err := Import("curl 'https://api.example.com/users' \\\n  -H 'Accept: application/json' \\\n  -X GET")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users", spec.URL)
	assert.Len(t, spec.Headers, 1)
}

func TestImportAll(t *testing.T) {
	input := `# users
curl https://api.example.com/users

curl -X POST https://api.example.com/users \
  -H 'Content-Type: application/json' \
  -d '{"name":"John"}'
curl -X TRACE https://api.example.com
curl -H 'broken
`
	specs, err := ImportAll(strings.NewReader(input))

	require.Len(t, specs, 2)
	assert.Equal(t, model.GET, specs[0].Method)
	assert.Equal(t, model.POST, specs[1].Method)
	assert.Equal(t, model.Json, specs[1].ParamType)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMethod))
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Contains(t, err.Error(), "command 3")
	assert.Contains(t, err.Error(), "command 4")
}
