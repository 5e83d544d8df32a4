package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered input file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides input file discovery for batch extraction
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. basePath anchors
// relative directory arguments.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// workbookSuffixes lists the spreadsheet container extensions a batch run
// picks up.
var workbookSuffixes = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// FindInputFiles finds every file a batch run can extract from: spreadsheet
// workbooks plus JSON element lists. Excel owner lock files are skipped and
// results are sorted by name so batch runs are deterministic.
func (d *Discovery) FindInputFiles(dir string) ([]FileInfo, error) {
	return d.findBySuffix(dir, append([]string{".json"}, workbookSuffixes...)...)
}

func (d *Discovery) findBySuffix(dir string, suffixes ...string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Excel owner lock files start with ~$ and are not real workbooks.
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if !hasAnySuffix(strings.ToLower(name), suffixes) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
