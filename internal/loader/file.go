package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// readContractFile reads a contract document from the local disk. Paths are
// resolved against the working directory so errors name the file that was
// actually opened.
func readContractFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, ErrNoLocation
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a contract document", abs)
	}
	if info.Size() > MaxContractSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrContractTooLarge, abs, info.Size())
	}
	return os.ReadFile(abs)
}
