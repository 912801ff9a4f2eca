/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package output

import (
	"os"
	"path/filepath"

	"github.com/clolc/fablogen/pkg/utils/errors"
)

const fileMode = 0o644

// WriteFile atomically replaces path with data. The content is written to a
// temporary file in the same directory and renamed into place; on failure
// the temporary file is removed and path is left untouched.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed creating directory [%s]", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed creating temporary file for [%s]", path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrapf(err, "failed writing [%s]", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "failed syncing [%s]", tmp.Name())
	}
	if err = tmp.Chmod(fileMode); err != nil {
		return errors.Wrapf(err, "failed setting mode of [%s]", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed closing [%s]", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed moving configuration to [%s]", path)
	}
	return nil
}
