package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
)

// LoadArtifacts resolves path into the analysis inputs: the parsed binary
// module (when a compiled artifact exists) and the source set. Either may
// be absent, never both. Directories must hold a recognizable contract
// project, which means a manifest referencing the contract SDK.
func LoadArtifacts(path string, cfg config.Config) (*ir.Module, *ir.SourceSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, &model.IOError{Path: path, Cause: err}
	}

	if !info.IsDir() {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".wasm":
			mod, err := parseModuleFile(path)
			if err != nil {
				return nil, nil, err
			}
			return mod, &ir.SourceSet{}, nil
		case ".rs":
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, &model.IOError{Path: path, Cause: err}
			}
			return nil, &ir.SourceSet{Files: []ir.SourceFile{{Path: path, Content: string(b)}}}, nil
		default:
			return nil, nil, &model.ConfigError{Reason: path + " is neither a .wasm module nor a .rs source file"}
		}
	}

	if !isContractProject(path) {
		return nil, nil, &model.ConfigError{Reason: path + " is not a Soroban contract project (no Cargo.toml referencing soroban-sdk)"}
	}

	src, err := loadSources(path, cfg)
	if err != nil {
		return nil, nil, err
	}
	var mod *ir.Module
	if wasmPath := findModule(path, cfg); wasmPath != "" {
		mod, err = parseModuleFile(wasmPath)
		if err != nil {
			return nil, nil, err
		}
		ir.AlignSource(mod, src)
	}
	if mod == nil && src.Empty() {
		return nil, nil, &model.ConfigError{Reason: path + " contains no analyzable artifacts"}
	}
	return mod, src, nil
}

func parseModuleFile(path string) (*ir.Module, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.IOError{Path: path, Cause: err}
	}
	return ir.Parse(path, raw)
}

// isContractProject looks for a Cargo.toml naming the contract SDK, at the
// root or one level down (workspace layouts).
func isContractProject(root string) bool {
	candidates := []string{filepath.Join(root, "Cargo.toml")}
	entries, _ := os.ReadDir(root)
	for _, e := range entries {
		if e.IsDir() {
			candidates = append(candidates, filepath.Join(root, e.Name(), "Cargo.toml"))
		}
	}
	for _, c := range candidates {
		b, err := os.ReadFile(c)
		if err == nil && strings.Contains(string(b), "soroban-sdk") {
			return true
		}
	}
	return false
}

// loadSources collects every non-ignored .rs file under root in walk order.
func loadSources(root string, cfg config.Config) (*ir.SourceSet, error) {
	src := &ir.SourceSet{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if path != root && cfg.Ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != ".rs" || cfg.Ignored(rel) {
			return nil
		}
		b, readErr := os.ReadFile(path)
		if readErr != nil {
			return &model.IOError{Path: path, Cause: readErr}
		}
		src.Files = append(src.Files, ir.SourceFile{Path: rel, Content: string(b)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return src, nil
}

// findModule locates the compiled artifact: the conventional release build
// location first, then any .wasm in the tree.
func findModule(root string, cfg config.Config) string {
	matches, _ := filepath.Glob(filepath.Join(root, "target", "wasm32*", "release", "*.wasm"))
	if len(matches) > 0 {
		return matches[0]
	}
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if path != root && cfg.Ignored(rel) && !strings.HasPrefix(rel, "target") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) == ".wasm" {
			found = path
		}
		return nil
	})
	return found
}
