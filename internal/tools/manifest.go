package tools

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// Manifest files select which tools a session offers and configure them.
// Each top-level table names a tool; its keys are that tool's options:
//
//	[clock]
//
//	[read_file]
//	root = "/srv/data"
//
//	[http_get]
//	timeout = "10s"
//	max_bytes = 65536
type builder func(md toml.MetaData, prim toml.Primitive) (Tool, error)

var builders = map[string]builder{
	"clock": func(toml.MetaData, toml.Primitive) (Tool, error) {
		return Clock(), nil
	},
	"calculator": func(toml.MetaData, toml.Primitive) (Tool, error) {
		return Calculator(), nil
	},
	"read_file": func(md toml.MetaData, prim toml.Primitive) (Tool, error) {
		var opts FSOptions
		if err := md.PrimitiveDecode(prim, &opts); err != nil {
			return Tool{}, err
		}
		return ReadFile(opts), nil
	},
	"list_files": func(md toml.MetaData, prim toml.Primitive) (Tool, error) {
		var opts FSOptions
		if err := md.PrimitiveDecode(prim, &opts); err != nil {
			return Tool{}, err
		}
		return ListFiles(opts), nil
	},
	"http_get": func(md toml.MetaData, prim toml.Primitive) (Tool, error) {
		var opts HTTPOptions
		if err := md.PrimitiveDecode(prim, &opts); err != nil {
			return Tool{}, err
		}
		return HTTPGet(opts), nil
	},
}

func builderNames() []string {
	out := make([]string, 0, len(builders))
	for name := range builders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadManifest registers the tools a manifest file names, in file order.
func LoadManifest(reg *Registry, path string) error {
	var sections map[string]toml.Primitive
	md, err := toml.DecodeFile(path, &sections)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		name := key[0]
		build, ok := builders[name]
		if !ok {
			return fmt.Errorf("%s: unknown tool %q (have: %v)", path, name, builderNames())
		}
		tool, err := build(md, sections[name])
		if err != nil {
			return fmt.Errorf("%s: tool %s: %w", path, name, err)
		}
		if err := reg.Register(tool); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
