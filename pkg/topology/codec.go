/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"gopkg.in/yaml.v2"

	"github.com/clolc/fablogen/pkg/utils/errors"
)

// Marshal serializes c to YAML. Keys follow the struct field order, so equal
// configurations produce identical bytes.
func Marshal(c *Configuration) ([]byte, error) {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrapf(err, "failed marshalling configuration")
	}
	return raw, nil
}

// Unmarshal parses a document produced by Marshal. Unknown keys are rejected.
func Unmarshal(raw []byte) (*Configuration, error) {
	c := &Configuration{}
	if err := yaml.UnmarshalStrict(raw, c); err != nil {
		return nil, errors.Wrapf(err, "failed unmarshalling configuration")
	}
	return c, nil
}
