package git

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// InspectLocal classifies path. A regular file at path is an error.
func InspectLocal(path string) (LocalState, error) {
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Absent, nil
	}
	if err != nil {
		return Absent, err
	}
	if !st.IsDir() {
		return Absent, fmt.Errorf("%s exists and is not a directory", path)
	}

	if _, err := os.Stat(filepath.Join(path, git.GitDirName)); err == nil {
		return GitRepository, nil
	}

	empty, err := isEmptyDir(path)
	if err != nil {
		return Absent, err
	}
	if empty {
		return Absent, nil
	}
	return NonGitDirectory, nil
}

func isEmptyDir(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
