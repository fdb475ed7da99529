package sheet

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/storage"
	"asset-reconciler/core/table"
)

// Extensions accepted as input tables.
var Extensions = []string{".xlsx", ".xlsm", ".csv"}

// Read parses data according to the extension of name.
func Read(name string, data []byte, opts Options) (*table.Table, error) {
	if opts.Name == "" {
		opts.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(bytes.NewReader(data), opts)
	case ".csv":
		return ReadCSV(bytes.NewReader(data), opts)
	default:
		return nil, fmt.Errorf("%w %q", apperrors.ErrUnsupportedExt, filepath.Ext(name))
	}
}

// FileSource loads a table from the local filesystem.
type FileSource struct {
	Path    string
	Options Options
}

// Name returns the file path.
func (s FileSource) Name() string { return s.Path }

// Load reads and parses the file.
func (s FileSource) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return Read(s.Path, data, s.Options)
}

// ObjectSource loads a table from an object in a bucket.
type ObjectSource struct {
	Client  storage.Client
	Bucket  string
	Object  string
	Options Options
}

// Name returns the object name.
func (s ObjectSource) Name() string { return s.Object }

// Load downloads and parses the object.
func (s ObjectSource) Load(ctx context.Context) (*table.Table, error) {
	data, err := storage.ReadObject(ctx, s.Client, s.Bucket, s.Object)
	if err != nil {
		return nil, err
	}
	return Read(s.Object, data, s.Options)
}

// BytesSource parses an upload held in memory.
type BytesSource struct {
	Filename string
	Data     []byte
	Options  Options
}

// Name returns the upload file name.
func (s BytesSource) Name() string { return s.Filename }

// Load parses the data.
func (s BytesSource) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Read(s.Filename, s.Data, s.Options)
}
