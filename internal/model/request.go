package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// DefaultName is the name given to a freshly created request
	DefaultName = "New http request"

	// untitledName is displayed for requests whose name is empty
	untitledName = "Http Request"

	// displayNameLimit caps the number of runes shown for a request name
	displayNameLimit = 15
)

// Kind identifies the protocol of a request
type Kind string

const (
	KindHTTP Kind = "http"
)

// Request is the capability set shared by every request kind the UI can list
type Request interface {
	ID() string
	DisplayName() string
	Kind() Kind
}

// Header is a single request header. Order is preserved and duplicates are allowed.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FormParam is one entry of a form-data or query parameter list
type FormParam struct {
	Key   string   `json:"key"`
	Value string   `json:"value"`
	Path  *string  `json:"path,omitempty"`
	Kind  FormKind `json:"kind"`
}

// TextParam returns a text form entry
func TextParam(key, value string) FormParam {
	return FormParam{Key: key, Value: value, Kind: FormText}
}

// FileParam returns a file form entry pointing at path
func FileParam(key, path string) FormParam {
	return FormParam{Key: key, Path: &path, Kind: FormFile}
}

// Http is a user-created HTTP request
type Http struct {
	id         string
	Name       string      `json:"name"`
	URL        string      `json:"url"`
	Method     Method      `json:"method"`
	Headers    []Header    `json:"headers"`
	ParamType  ParamType   `json:"param_type"`
	TextParam  string      `json:"text_param"`
	FormParams []FormParam `json:"form_params"`
}

// NewHttp creates an empty GET request with a fresh id
func NewHttp() *Http {
	return &Http{
		id:        newID(),
		Name:      DefaultName,
		Method:    GET,
		ParamType: Query,
	}
}

// RestoreHttp rebuilds a request with a known id, e.g. when loading it from storage
func RestoreHttp(id string) (*Http, error) {
	if id == "" {
		return nil, fmt.Errorf("request id must not be empty")
	}
	return &Http{id: id, Method: GET, ParamType: Query}, nil
}

func newID() string {
	return uuid.NewString()
}

// ID returns the request's stable identifier
func (h *Http) ID() string {
	return h.id
}

// Kind returns KindHTTP
func (h *Http) Kind() Kind {
	return KindHTTP
}

// DisplayName returns the label shown in request lists
func (h *Http) DisplayName() string {
	if h.Name == "" {
		return untitledName
	}
	if utf8.RuneCountInString(h.Name) > displayNameLimit {
		return string([]rune(h.Name)[:displayNameLimit])
	}
	return h.Name
}

// Same reports whether both values describe the same request entity
func (h *Http) Same(other *Http) bool {
	return other != nil && h.id == other.id
}

// SetMethod changes the method and resets the parameter model to match it.
// GET clears the form params and switches to query params; every other method
// switches to form-data.
func (h *Http) SetMethod(m Method) {
	h.Method = m
	if m == GET {
		h.FormParams = nil
		h.ParamType = Query
		return
	}
	h.ParamType = FormData
}

// AddHeader appends a header, keeping any existing header with the same key
func (h *Http) AddHeader(key, value string) {
	h.Headers = append(h.Headers, Header{Key: key, Value: value})
}

// Clone returns a deep copy that shares nothing with h
func (h *Http) Clone() *Http {
	c := *h
	c.Headers = append([]Header(nil), h.Headers...)
	if h.FormParams != nil {
		c.FormParams = make([]FormParam, len(h.FormParams))
		for i, p := range h.FormParams {
			if p.Path != nil {
				path := *p.Path
				p.Path = &path
			}
			c.FormParams[i] = p
		}
	}
	return &c
}

// MarshalJSON includes the unexported id
func (h *Http) MarshalJSON() ([]byte, error) {
	type alias Http
	return json.Marshal(&struct {
		ID string `json:"id"`
		*alias
	}{ID: h.id, alias: (*alias)(h)})
}

// UnmarshalJSON restores the id; a missing id gets a fresh one
func (h *Http) UnmarshalJSON(data []byte) error {
	type alias Http
	aux := &struct {
		ID string `json:"id"`
		*alias
	}{alias: (*alias)(h)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	h.id = strings.TrimSpace(aux.ID)
	if h.id == "" {
		h.id = newID()
	}
	return nil
}

// Response is the outcome of a successful execution
type Response struct {
	StatusCode    int           `json:"status_code"`
	Status        string        `json:"status"`
	ContentLength *int64        `json:"content_length,omitempty"`
	Headers       []Header      `json:"headers"`
	Body          string        `json:"body"`
	Duration      time.Duration `json:"duration"`
}

// HistoryEntry is a send recorded in the workspace history
type HistoryEntry struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Method    Method    `json:"method"`
	URL       string    `json:"url"`
	Response  *Response `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
}
