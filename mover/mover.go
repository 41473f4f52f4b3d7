// Package mover replicates a selected subset of images under a destination
// root, preserving the relative directory layout of the source tree.
package mover

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/omelkes/phaicull/config"
	"github.com/omelkes/phaicull/logging"
)

// Apply copies or moves paths from srcRoot into destRoot, keeping each file's
// path relative to srcRoot. It returns how many files were transferred. On
// the first failure it stops and returns the error; files already transferred
// stay where they are.
func Apply(action config.Action, srcRoot, destRoot string, paths []string) (int, error) {
	if action == config.ActionReport {
		return 0, nil
	}

	if err := os.MkdirAll(destRoot, 0755); err != nil {
		return 0, fmt.Errorf("cannot create output directory %s: %v", destRoot, err)
	}

	transferred := 0
	for _, path := range paths {
		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return transferred, fmt.Errorf("cannot resolve %s relative to %s: %v", path, srcRoot, err)
		}

		dest := filepath.Join(destRoot, rel)
		if dir := filepath.Dir(dest); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return transferred, fmt.Errorf("cannot create directory %s: %v", dir, err)
			}
		}

		switch action {
		case config.ActionCopy:
			err = copyFile(path, dest)
		case config.ActionMove:
			err = moveFile(path, dest)
		default:
			return transferred, fmt.Errorf("unsupported action %q", action)
		}
		if err != nil {
			return transferred, err
		}

		logging.DebugLog("%s %s -> %s", action, path, dest)
		transferred++
	}

	return transferred, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cannot open %s: %v", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("cannot stat %s: %v", src, err)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("cannot create %s: %v", dest, err)
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("cannot copy %s to %s: %v", src, dest, err)
	}
	return out.Close()
}

func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	// Rename fails across filesystems; fall back to copy then delete.
	if err := copyFile(src, dest); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("cannot remove %s after copy: %v", src, err)
	}
	return nil
}
