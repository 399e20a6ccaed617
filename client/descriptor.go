package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// RequestDescriptor captures everything needed to issue a request, so a
// failed request can be replayed exactly. Descriptors are value-copied at
// send time; later mutation by the caller never affects replays.
type RequestDescriptor struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// JSON, when non-nil, is marshaled as the request body with a JSON
	// content type. Mutually exclusive with Form.
	JSON any

	// Form, when non-nil, is encoded as multipart/form-data. The content
	// type is set from the multipart writer, never application/json.
	Form *Form

	// RawBody, when non-nil, is sent verbatim with ContentType. Takes
	// precedence over Form and JSON.
	RawBody     []byte
	ContentType string

	// Transform, when non-nil, rewrites the fetched collection body after
	// pagination flattening and before decoding. Stored with the
	// descriptor so a Retry replay applies it again.
	Transform func(json.RawMessage) (json.RawMessage, error)
}

// Form holds multipart fields and file attachments.
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

// FormFile is a single multipart file attachment.
type FormFile struct {
	Field    string
	Filename string
	Content  []byte
}

// clone deep-copies the descriptor so a stored replay cannot be mutated
// through the caller's value.
func (d RequestDescriptor) clone() RequestDescriptor {
	out := d
	if d.Query != nil {
		out.Query = make(url.Values, len(d.Query))
		for k, vs := range d.Query {
			out.Query[k] = append([]string(nil), vs...)
		}
	}
	if d.Header != nil {
		out.Header = d.Header.Clone()
	}
	if d.Form != nil {
		f := &Form{Files: append([]FormFile(nil), d.Form.Files...)}
		if d.Form.Fields != nil {
			f.Fields = make(map[string]string, len(d.Form.Fields))
			for k, v := range d.Form.Fields {
				f.Fields[k] = v
			}
		}
		out.Form = f
	}
	if d.RawBody != nil {
		out.RawBody = append([]byte(nil), d.RawBody...)
	}
	return out
}

// body encodes the request body and returns it with its content type.
// A descriptor with no RawBody, Form, or JSON has no body.
func (d RequestDescriptor) body() (io.Reader, string, error) {
	switch {
	case d.RawBody != nil:
		return bytes.NewReader(d.RawBody), d.ContentType, nil

	case d.Form != nil:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range d.Form.Fields {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("client: write form field %q: %w", k, err)
			}
		}
		for _, f := range d.Form.Files {
			part, err := w.CreateFormFile(f.Field, f.Filename)
			if err != nil {
				return nil, "", fmt.Errorf("client: create form file %q: %w", f.Field, err)
			}
			if _, err := part.Write(f.Content); err != nil {
				return nil, "", fmt.Errorf("client: write form file %q: %w", f.Field, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("client: close multipart body: %w", err)
		}
		return &buf, w.FormDataContentType(), nil

	case d.JSON != nil:
		b, err := json.Marshal(d.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("client: marshal request body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil

	default:
		return nil, "", nil
	}
}
