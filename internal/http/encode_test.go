package http

import (
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedsharma/reqpad/internal/model"
)

func TestEncode(t *testing.T) {
	u, err := url.Parse("https://h/p?a=1")
	require.NoError(t, err)

	tc := []struct {
		paramType   model.ParamType
		contentType string
		body        string
		rawQuery    string
	}{
		{paramType: model.None, rawQuery: "a=1"},
		{paramType: model.Query, rawQuery: "a=1&k=v"},
		{paramType: model.Json, contentType: "application/json", body: "payload", rawQuery: "a=1"},
		{paramType: model.Other, body: "payload", rawQuery: "a=1"},
	}
	for _, c := range tc {
		spec := model.NewHttp()
		spec.ParamType = c.paramType
		spec.TextParam = "payload"
		spec.FormParams = []model.FormParam{model.TextParam("k", "v")}

		p, err := Encode(spec, u)
		require.NoError(t, err)

		assert.Equal(t, c.contentType, p.ContentType, c.paramType.String())
		assert.Equal(t, c.rawQuery, p.URL.RawQuery, c.paramType.String())
		if c.body == "" {
			assert.Nil(t, p.Body, c.paramType.String())
			continue
		}
		data, err := io.ReadAll(p.Body)
		require.NoError(t, err)
		assert.Equal(t, c.body, string(data))
	}

	// the validated URL is never modified
	assert.Equal(t, "a=1", u.RawQuery)
}
