package git

import "strings"

// FileNames interns the directory and leaf parts of paths seen while parsing
// a whole history, so repeated names share storage and get small handles.
// It is not safe for concurrent use.
type FileNames struct {
	dirs    []string
	dirIdx  map[string]int
	names   []string
	nameIdx map[string]int
	paths   map[string]string
}

func NewFileNames() *FileNames {
	return &FileNames{
		dirIdx:  make(map[string]int),
		nameIdx: make(map[string]int),
		paths:   make(map[string]string),
	}
}

// Intern returns the handles of the directory (including the trailing slash)
// and leaf name of path, plus a canonical copy of path shared by all callers.
func (f *FileNames) Intern(path string) (dir int, name int, canonical string) {
	cut := strings.LastIndexByte(path, '/') + 1
	dir = intern(&f.dirs, f.dirIdx, path[:cut])
	name = intern(&f.names, f.nameIdx, path[cut:])
	canonical, ok := f.paths[path]
	if !ok {
		canonical = strings.Clone(path)
		f.paths[canonical] = canonical
	}
	return dir, name, canonical
}

func intern(table *[]string, idx map[string]int, s string) int {
	if h, ok := idx[s]; ok {
		return h
	}
	s = strings.Clone(s)
	*table = append(*table, s)
	idx[s] = len(*table) - 1
	return len(*table) - 1
}

// Dir returns the directory string of handle h.
func (f *FileNames) Dir(h int) string {
	if h < 0 || h >= len(f.dirs) {
		return ""
	}
	return f.dirs[h]
}

// Name returns the leaf name string of handle h.
func (f *FileNames) Name(h int) string {
	if h < 0 || h >= len(f.names) {
		return ""
	}
	return f.names[h]
}

func (f *FileNames) Dirs() int { return len(f.dirs) }

func (f *FileNames) Names() int { return len(f.names) }

func (f *FileNames) Reset() {
	f.dirs = nil
	f.names = nil
	clear(f.dirIdx)
	clear(f.nameIdx)
	clear(f.paths)
}
