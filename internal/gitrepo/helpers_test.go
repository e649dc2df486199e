package gitrepo_test

import "os"

const testDirectoryPermissionsConstant = 0o755

func mkdirAll(path string) error {
	return os.MkdirAll(path, testDirectoryPermissionsConstant)
}
