package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
)

// ClearDir removes everything inside dir without removing dir itself.
// Individual failures are reported but do not stop the sweep.
func ClearDir(dir string) []error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []error{fmt.Errorf("list %s: %w", dir, err)}
	}

	var errs []error
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", path, err))
		}
	}
	return errs
}

// SetOwnerRecursive assigns the configured owner and group to path and
// everything below it, with 0775 on directories and 0664 on files. Empty
// userName/groupName disables the pass entirely, so unprivileged setups
// keep working.
func SetOwnerRecursive(path, userName, groupName string) error {
	if userName == "" || groupName == "" {
		return nil
	}

	uid, gid, err := lookupIDs(userName, groupName)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := os.Chown(p, uid, gid); err != nil {
			return fmt.Errorf("chown %s: %w", p, err)
		}
		mode := os.FileMode(0o664)
		if d.IsDir() {
			mode = 0o775
		}
		if err := os.Chmod(p, mode); err != nil {
			return fmt.Errorf("chmod %s: %w", p, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("normalize ownership of %s: %w", path, err)
	}
	return nil
}

func lookupIDs(userName, groupName string) (int, int, error) {
	u, err := user.Lookup(userName)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup user %s: %w", userName, err)
	}
	g, err := user.LookupGroup(groupName)
	if err != nil {
		return 0, 0, fmt.Errorf("lookup group %s: %w", groupName, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, fmt.Errorf("parse uid %s: %w", u.Uid, err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return 0, 0, fmt.Errorf("parse gid %s: %w", g.Gid, err)
	}
	return uid, gid, nil
}
