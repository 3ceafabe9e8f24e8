package platform

import (
	"bytes"
	"io"
	"os"
	"runtime"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// HasShebang reports whether the file starts with "#!".
func HasShebang(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 2)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head, []byte("#!"))
}

// MakeExecutable grants execute permission wherever read permission is
// already granted, and always to the owner. It reports whether the mode
// changed; files that already carry any execute bit are left alone.
func MakeExecutable(path string) (bool, error) {
	if runtime.GOOS == "windows" {
		return false, nil
	}

	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	mode := info.Mode().Perm()
	if mode&0o111 != 0 {
		return false, nil
	}

	next := mode | 0o100
	if mode&0o040 != 0 {
		next |= 0o010
	}
	if mode&0o004 != 0 {
		next |= 0o001
	}
	if err := Chmod(path, next); err != nil {
		return false, err
	}
	return true, nil
}
