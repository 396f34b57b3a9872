package eea

import (
	"os"
	"sort"
	"strings"

	"github.com/absfs/absfs"
)

// CollectFiles returns every regular file below root in lexical order.
// If root is a file it is returned on its own.
func CollectFiles(fsys absfs.FileSystem, root string) ([]string, error) {
	if fsys == nil {
		return nil, ErrNilFileSystem
	}
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, NewIOError("stat", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	if err := collect(fsys, root, &files); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func collect(fsys absfs.FileSystem, dir string, files *[]string) error {
	f, err := fsys.Open(dir)
	if err != nil {
		return NewIOError("open", dir, err)
	}
	entries, err := f.Readdir(-1)
	f.Close()
	if err != nil {
		return NewIOError("readdir", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}
		full := joinPath(fsys.Separator(), dir, name)
		if entry.IsDir() {
			if err := collect(fsys, full, files); err != nil {
				return err
			}
			continue
		}
		if entry.Mode()&os.ModeType == 0 {
			*files = append(*files, full)
		}
	}
	return nil
}

// joinPath joins dir and name with the filesystem separator
func joinPath(sep uint8, dir, name string) string {
	s := string(rune(sep))
	if strings.HasSuffix(dir, s) {
		return dir + name
	}
	return dir + s + name
}
