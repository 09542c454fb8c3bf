package orch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ident accepts a JSON string or number; clients send database keys either way.
type ident string

func (i *ident) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*i = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = ident(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("identifier must be a string or a number: %w", err)
		}
		*i = ident(n.String())
	}
	return nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		return v, fmt.Errorf("empty payload: %w", domain.ErrBadPayload)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", domain.ErrBadPayload, err)
	}
	if err := validate.Struct(v); err != nil {
		return v, fmt.Errorf("%w: %v", domain.ErrBadPayload, err)
	}
	return v, nil
}

// Routes builds content service resource paths.
type Routes struct {
	PostsPrefix string
}

// Post joins the posts prefix, the post id and further segments with a trailing slash.
func (r Routes) Post(id string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(r.PostsPrefix, "/"))
	b.WriteByte('/')
	b.WriteString(escapeSegment(id))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(s)
	}
	b.WriteByte('/')
	return b.String()
}

func escapeSegment(s string) string { return url.PathEscape(s) }
