// Package loader reads section contract documents for the catalog from
// local files, embedded filesystems and HTTP endpoints.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-sectionform/pkg/catalog"
)

// MaxContractSize caps a single contract document.
const MaxContractSize int64 = 4 << 20

var (
	ErrNoLocation       = errors.New("source has no location")
	ErrNoFileSystem     = errors.New("no filesystem configured")
	ErrHTTPDisabled     = errors.New("remote contracts are disabled")
	ErrContractTooLarge = errors.New("contract document too large")
)

// Loader picks the file, fs.FS or HTTP reader matching a contract source.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ catalog.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options catalog.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load reads the contract document behind src and detects its format.
func (l *Loader) Load(ctx context.Context, src catalog.Source) (catalog.Document, error) {
	if src == nil {
		return catalog.Document{}, fmt.Errorf("contract loader: %w", ErrNoLocation)
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case catalog.SourceKindFile:
		data, err = readContractFile(ctx, src.Location())
	case catalog.SourceKindFS:
		data, err = readContractFS(ctx, l.fs, src.Location())
	case catalog.SourceKindURL:
		if !l.allowHTTP {
			return catalog.Document{}, fmt.Errorf("contract loader: %s: %w", src.Location(), ErrHTTPDisabled)
		}
		data, err = fetchContract(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return catalog.Document{}, fmt.Errorf("contract loader: %s: %w", src.Location(), err)
	}

	return catalog.NewDocument(src, data)
}
