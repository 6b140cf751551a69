// Package source loads Python programs into syntax trees.
//
// A reference is either a filesystem path or an http(s) URL; [Load]
// dispatches on the scheme. Parse failures are INVALID_INPUT errors that name
// the line and column of the first problem.
package source

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/httputil"
	"github.com/matzehuels/visast/pkg/source/python"
	"github.com/matzehuels/visast/pkg/syntax"
)

// Fetcher downloads remote sources. Tests replace it.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

// DefaultFetcher uses [httputil.Fetch] with its default timeout and retries.
func DefaultFetcher(ctx context.Context, url string) ([]byte, error) {
	return httputil.Fetch(ctx, url, httputil.FetchOptions{})
}

// Loader turns references into syntax trees.
type Loader struct {
	Fetch Fetcher
}

// New returns a loader using [DefaultFetcher].
func New() *Loader {
	return &Loader{Fetch: DefaultFetcher}
}

// Load reads ref as a URL if it starts with http:// or https://, and as a
// file path otherwise.
func (l *Loader) Load(ctx context.Context, ref string) (*syntax.Element, error) {
	if errors.IsURL(ref) {
		return l.FromURL(ctx, ref)
	}
	return l.FromPath(ctx, ref)
}

// FromString parses Python source text.
func (l *Loader) FromString(ctx context.Context, src string) (*syntax.Element, error) {
	return parse(ctx, []byte(src), "<string>")
}

// FromPath reads and parses the file at path.
func (l *Loader) FromPath(ctx context.Context, path string) (*syntax.Element, error) {
	if err := errors.ValidateSourcePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return parse(ctx, data, path)
}

// FromURL downloads and parses the file at url.
func (l *Loader) FromURL(ctx context.Context, url string) (*syntax.Element, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	fetch := l.Fetch
	if fetch == nil {
		fetch = DefaultFetcher
	}
	data, err := fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return parse(ctx, data, url)
}

func parse(ctx context.Context, src []byte, name string) (*syntax.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, err := python.Parse(src)
	if err != nil {
		var se *python.SyntaxError
		if stderrors.As(err, &se) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", name)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s", name)
	}
	return tree, nil
}

// Load is shorthand for New().Load.
func Load(ctx context.Context, ref string) (*syntax.Element, error) {
	return New().Load(ctx, ref)
}

// FromString is shorthand for New().FromString.
func FromString(ctx context.Context, src string) (*syntax.Element, error) {
	return New().FromString(ctx, src)
}

// FromPath is shorthand for New().FromPath.
func FromPath(ctx context.Context, path string) (*syntax.Element, error) {
	return New().FromPath(ctx, path)
}

// FromURL is shorthand for New().FromURL.
func FromURL(ctx context.Context, url string) (*syntax.Element, error) {
	return New().FromURL(ctx, url)
}
