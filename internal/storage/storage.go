package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrEmptyPath = errors.New("object path is required")

// ProgressFunc receives the number of bytes sent so far and the total size
type ProgressFunc func(sent, total int64)

// Object is a single write to object storage
type Object struct {
	Path        string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
	// Version is appended to the public URL as ?v= so caches refresh when
	// the same path is overwritten
	Version  string
	Progress ProgressFunc
}

// Store writes objects and returns the address clients retrieve them from
type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
}

// PublicURL joins the public base, bucket and object path
func PublicURL(base, bucket, path, version string) string {
	u := fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.TrimLeft(path, "/"))
	if version != "" {
		u += "?v=" + version
	}
	return u
}

func validate(obj Object) error {
	if strings.TrimSpace(obj.Path) == "" {
		return ErrEmptyPath
	}
	if obj.Body == nil {
		return errors.New("object body is required")
	}
	return nil
}
