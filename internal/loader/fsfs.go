package loader

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// readContractFS reads a contract document from an embedded or in-memory
// filesystem. Leading "./" and "/" are dropped so catalog entries written
// as relative paths resolve the same way.
func readContractFS(ctx context.Context, fsys fs.FS, name string) ([]byte, error) {
	if fsys == nil {
		return nil, ErrNoFileSystem
	}
	name = path.Clean(strings.TrimLeft(name, "/"))
	if name == "" || name == "." {
		return nil, ErrNoLocation
	}
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%q escapes the contract filesystem", name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxContractSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrContractTooLarge, name, len(data))
	}
	return data, nil
}
