package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/machibo/backoffice/internal/domain"
)

// Envelope is the {status, message, data} wrapper every endpoint responds with.
type Envelope struct {
	Status  Status          `json:"status"`
	Message Message         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Status is the envelope success flag. The API sends it as a boolean, a number
// or a string depending on the endpoint; a missing status counts as success.
type Status struct {
	set bool
	ok  bool
}

// OK reports whether the envelope reports success.
func (s Status) OK() bool { return !s.set || s.ok }

func (s *Status) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*s = Status{}
		return nil
	}
	s.set = true
	switch raw[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		s.ok = b
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return err
		}
		s.ok = statusText(str)
	default:
		n, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return fmt.Errorf("api: envelope status %s: %w", raw, err)
		}
		s.ok = statusCode(int(n))
	}
	return nil
}

func statusText(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ok", "success", "succeeded", "true":
		return true
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return statusCode(n)
	}
	return false
}

func statusCode(n int) bool {
	return n == 1 || (n >= 200 && n < 300)
}

// Message is the envelope message. Validation failures arrive as a list or
// a field map; both are flattened to one line.
type Message string

func (m *Message) UnmarshalJSON(raw []byte) error {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		*m = Message(text)
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		*m = Message(strings.Join(list, "; "))
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, fields[k]))
		}
		*m = Message(strings.Join(parts, "; "))
		return nil
	}
	*m = ""
	return nil
}

func decodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("api: decode envelope: %w", err)
	}
	return &env, nil
}

type listData[T any] struct {
	Rows       []T                `json:"rows"`
	Logs       []T                `json:"logs"`
	Pagination *domain.Pagination `json:"pagination"`
}

// decodePage builds a page from data.rows or data.logs and data.pagination.
// A bare array is accepted as a single unpaginated page.
func decodePage[T any](data json.RawMessage) (domain.Page[T], error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return domain.Page[T]{Rows: []T{}, Pagination: domain.DefaultPagination(0)}, nil
	}
	if data[0] == '[' {
		var rows []T
		if err := json.Unmarshal(data, &rows); err != nil {
			return domain.Page[T]{}, fmt.Errorf("api: decode rows: %w", err)
		}
		return singlePage(rows), nil
	}

	var list listData[T]
	if err := json.Unmarshal(data, &list); err != nil {
		return domain.Page[T]{}, fmt.Errorf("api: decode list: %w", err)
	}
	rows := list.Rows
	if rows == nil {
		rows = list.Logs
	}
	if rows == nil {
		rows = []T{}
	}
	if list.Pagination == nil {
		return singlePage(rows), nil
	}
	return domain.Page[T]{Rows: rows, Pagination: *list.Pagination}, nil
}

// decodeRows returns the rows of data regardless of pagination.
func decodeRows[T any](data json.RawMessage) ([]T, error) {
	page, err := decodePage[T](data)
	if err != nil {
		return nil, err
	}
	return page.Rows, nil
}

func singlePage[T any](rows []T) domain.Page[T] {
	if rows == nil {
		rows = []T{}
	}
	p := domain.DefaultPagination(len(rows))
	p.Total = len(rows)
	return domain.Page[T]{Rows: rows, Pagination: p}
}
