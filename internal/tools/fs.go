package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSOptions confines file tools to a directory tree.
type FSOptions struct {
	Root     string `toml:"root"`
	MaxBytes int64  `toml:"max_bytes"`
}

const defaultReadLimit = 256 * 1024

func (o FSOptions) root() string {
	if o.Root == "" {
		return "."
	}
	return o.Root
}

// resolve joins a model-supplied relative path against the root and rejects
// anything that escapes it.
func (o FSOptions) resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", rel)
	}
	root, err := filepath.Abs(o.root())
	if err != nil {
		return "", err
	}
	full := filepath.Clean(filepath.Join(root, rel))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the workspace: %s", rel)
	}
	return full, nil
}

type readFileInput struct {
	Path string `json:"path" jsonschema_description:"Relative path of the file to read."`
}

// ReadFile exposes file contents under the configured root.
func ReadFile(opts FSOptions) Tool {
	return Tool{
		Name:        "read_file",
		Description: "Read the contents of a text file addressed by a relative path within the workspace.",
		Parameters:  schemaFor[readFileInput](),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in readFileInput
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("decode arguments: %w", err)
			}
			full, err := opts.resolve(in.Path)
			if err != nil {
				return "", err
			}
			data, err := os.ReadFile(full)
			if err != nil {
				return "", err
			}
			limit := opts.MaxBytes
			if limit <= 0 {
				limit = defaultReadLimit
			}
			if int64(len(data)) > limit {
				return string(data[:limit]) + "\n-- truncated --\n", nil
			}
			return string(data), nil
		},
	}
}

type listFilesInput struct {
	Path string `json:"path,omitempty" jsonschema_description:"Optional relative directory to list (defaults to the workspace root)."`
}

// ListFiles lists directory entries under the configured root, non-recursive.
// Directories carry a trailing slash.
func ListFiles(opts FSOptions) Tool {
	return Tool{
		Name:        "list_files",
		Description: "List the entries of a directory within the workspace (non-recursive).",
		Parameters:  schemaFor[listFilesInput](),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in listFilesInput
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("decode arguments: %w", err)
			}
			full, err := opts.resolve(in.Path)
			if err != nil {
				return "", err
			}
			entries, err := os.ReadDir(full)
			if err != nil {
				return "", err
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() {
					name += "/"
				}
				names = append(names, name)
			}
			sort.Strings(names)
			b, err := json.Marshal(names)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}
}
