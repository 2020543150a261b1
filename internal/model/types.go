package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Method is an HTTP method supported by the request editor
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	DELETE Method = "DELETE"
	PATCH  Method = "PATCH"
)

// Methods lists the supported methods in menu order
var Methods = []Method{GET, POST, PUT, DELETE, PATCH}

// ParseMethod maps a method name to a Method. Matching is case-insensitive.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown method %q", s)
}

func (m Method) String() string {
	return string(m)
}

// ParamType decides how the request parameters are encoded
type ParamType int

const (
	None ParamType = iota
	FormData
	Json
	Query
	Other
)

var paramTypeNames = map[ParamType]string{
	None:     "none",
	FormData: "form-data",
	Json:     "json",
	Query:    "query",
	Other:    "other",
}

func (p ParamType) String() string {
	if name, ok := paramTypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("ParamType(%d)", int(p))
}

// ParseParamType is the inverse of ParamType.String
func ParseParamType(s string) (ParamType, error) {
	for p, name := range paramTypeNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return None, fmt.Errorf("unknown param type %q", s)
}

// ContentType returns the content type forced by p, or "" if p forces none
func (p ParamType) ContentType() string {
	switch p {
	case FormData:
		return "multipart/form-data"
	case Json:
		return "application/json"
	default:
		return ""
	}
}

func (p ParamType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *ParamType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseParamType(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// FormKind tells whether a form entry carries text or a file
type FormKind int

const (
	FormText FormKind = iota
	FormFile
)

func (k FormKind) String() string {
	if k == FormFile {
		return "file"
	}
	return "text"
}

func (k FormKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *FormKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "text":
		*k = FormText
	case "file":
		*k = FormFile
	default:
		return fmt.Errorf("unknown form kind %q", s)
	}
	return nil
}
