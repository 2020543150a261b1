package http

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/vedsharma/reqpad/internal/model"
)

// Payload is the wire form of a request's parameters
type Payload struct {
	URL         *url.URL
	Body        io.Reader
	ContentType string
}

// Encode builds the URL, body and forced content type for spec.
// u is the already validated request URL; it is not modified.
func Encode(spec *model.Http, u *url.URL) (*Payload, error) {
	p := &Payload{URL: u}

	switch spec.ParamType {
	case model.Query:
		p.URL = appendQuery(u, spec.FormParams)

	case model.FormData:
		body, contentType, err := buildMultipartBody(spec.FormParams)
		if err != nil {
			return nil, err
		}
		p.Body = body
		p.ContentType = contentType

	case model.Json, model.Other:
		p.Body = strings.NewReader(spec.TextParam)
		p.ContentType = spec.ParamType.ContentType()
	}

	return p, nil
}

// appendQuery adds params to the query string in the order given
func appendQuery(u *url.URL, params []model.FormParam) *url.URL {
	out := *u
	if len(params) == 0 {
		return &out
	}

	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, p := range params {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	out.RawQuery = b.String()
	return &out
}

// buildMultipartBody creates a multipart form body. Any unreadable file fails
// the whole body.
func buildMultipartBody(params []model.FormParam) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, param := range params {
		switch {
		case param.Kind == model.FormFile && param.Path != nil:
			if err := writeFilePart(writer, param.Key, *param.Path); err != nil {
				return nil, "", &SendError{Kind: ErrFile, Err: err}
			}
		case param.Kind == model.FormText:
			if err := writer.WriteField(param.Key, param.Value); err != nil {
				return nil, "", &SendError{Kind: ErrFile, Err: err}
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", &SendError{Kind: ErrFile, Err: err}
	}
	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(writer *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open form file: %w", err)
	}
	defer file.Close()

	filename := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read form file %s: %w", path, err)
	}
	return nil
}
