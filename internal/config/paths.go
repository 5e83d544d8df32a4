package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// Every path is resolved relative to the executable directory, never the
// current working directory, so the binary behaves the same wherever it is
// launched from.
type Paths struct {
	ExecutableDir string
	DataDir       string
	OutputDir     string
	MappingsDir   string
	LogsDir       string

	// DefaultMappingFile is the field-mapping document used when no
	// mapping is named explicitly.
	DefaultMappingFile string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)
	dataDir := filepath.Join(exeDir, DefaultDataDir)
	mappingsDir := filepath.Join(exeDir, MappingsDirName)

	return &Paths{
		ExecutableDir:      exeDir,
		DataDir:            dataDir,
		OutputDir:          filepath.Join(dataDir, "output"),
		MappingsDir:        mappingsDir,
		LogsDir:            filepath.Join(exeDir, DefaultLogsDir),
		DefaultMappingFile: filepath.Join(mappingsDir, DefaultMappingName),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.OutputDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// GetOutputPath returns the path for an extraction result file
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// ResolveMappingFile resolves a mapping selector to a file path. An empty
// selector means the default mapping; a bare name is looked up inside the
// mappings directory, probing the .yaml and .yml extensions; anything that
// names an existing file is used as-is. A selector that resolves to no
// existing file returns the empty string, which downstream treats as
// "no mapping configured".
func (p *Paths) ResolveMappingFile(selector string) string {
	if selector == "" {
		if FileExists(p.DefaultMappingFile) {
			return p.DefaultMappingFile
		}
		return ""
	}

	if FileExists(selector) {
		return selector
	}

	candidate := filepath.Join(p.MappingsDir, selector)
	if FileExists(candidate) {
		return candidate
	}
	for _, ext := range []string{".yaml", ".yml"} {
		if FileExists(candidate + ext) {
			return candidate + ext
		}
	}
	return ""
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
