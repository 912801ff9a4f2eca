/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/clolc/fablogen/pkg/topology"
	"github.com/clolc/fablogen/pkg/utils/errors"
)

// EnvPrefix prefixes the environment variables overriding parameters,
// e.g. FABLOGEN_NUM_ORGS.
const EnvPrefix = "FABLOGEN"

// New returns a viper instance that knows every generator parameter, with
// its documented default, and reads overrides from the environment.
func New() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	defaults := map[string]interface{}{}
	if err := mapstructure.Decode(topology.DefaultParams(), &defaults); err != nil {
		return nil, errors.Wrapf(err, "failed collecting default parameters")
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v, nil
}

// Load returns the parameters held by v. If paramsFile is not empty it is
// read first; flags bound to v and environment variables take precedence
// over its content.
func Load(v *viper.Viper, paramsFile string) (topology.Params, error) {
	if len(paramsFile) != 0 {
		v.SetConfigFile(paramsFile)
		if err := v.ReadInConfig(); err != nil {
			return topology.Params{}, errors.NewArgumentError("params", paramsFile, "failed reading parameters file: %s", err)
		}
	}

	settings := v.AllSettings()
	p := topology.DefaultParams()
	if err := decode(settings, &p); err != nil {
		return topology.Params{}, offendingKey(settings, err)
	}
	return p, nil
}

// decode is intended to unmarshal the settings into the parameters structure,
// producing an error when extraneous keys are introduced.
func decode(input map[string]interface{}, output *topology.Params) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// offendingKey narrows a decoding failure down to the first key, in
// alphabetical order, that fails on its own.
func offendingKey(settings map[string]interface{}, cause error) error {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		p := topology.DefaultParams()
		if err := decode(map[string]interface{}{key: settings[key]}, &p); err != nil {
			return errors.NewArgumentError(key, settings[key], "%s", err)
		}
	}
	return errors.NewArgumentError("params", "", "%s", cause)
}
