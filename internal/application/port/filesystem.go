package port

import "context"

// FileSystem provides file system operations for the application layer.
type FileSystem interface {
	Exists(ctx context.Context, path string) (bool, error)
	// Remove deletes a single file. A missing file is not an error.
	Remove(ctx context.Context, path string) error
	// Rename moves a file, replacing nothing: callers remove the destination first.
	Rename(ctx context.Context, from, to string) error
}
