package options

import (
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/a8m/envsubst"
	"github.com/ghodss/yaml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variable of every option.
const EnvPrefix = "CANVAS_AUTH"

// Load fills into from, in increasing precedence, flag defaults, the TOML
// file configFileName (if not empty), CANVAS_AUTH_ environment variables
// and set flags. A field tagged
//
//	ClientID string `flag:"client-id" cfg:"client_id"`
//
// is set by client_id in the file, CANVAS_AUTH_CLIENT_ID or --client-id.
// Nested option groups are tagged `cfg:",squash"` and fields that are not
// options `cfg:",internal"`. Keys in the file that match no option are an
// error.
func Load(configFileName string, flagSet *pflag.FlagSet, into interface{}) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetTypeByDefaultValue(true)

	if configFileName != "" {
		v.SetConfigFile(configFileName)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to load config file: %w", err)
		}
	}

	if err := bindFlags(v, flagSet, reflect.TypeOf(into), ""); err != nil {
		return fmt.Errorf("unable to register flags: %w", err)
	}

	if err := v.UnmarshalExact(into, func(c *mapstructure.DecoderConfig) { c.TagName = "cfg" }); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}
	return nil
}

// bindFlags binds the flag of every option field in t to its cfg key. path
// names the field in errors.
func bindFlags(v *viper.Viper, flagSet *pflag.FlagSet, t reflect.Type, path string) error {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for _, field := range reflect.VisibleFields(t) {
		cfg := field.Tag.Get("cfg")
		if !field.IsExported() || cfg == ",internal" || len(field.Index) > 1 {
			continue
		}
		name := path + "." + field.Name

		if field.Type.Kind() == reflect.Struct {
			if cfg != ",squash" {
				return fmt.Errorf("field %q does not have required cfg tag: `,squash`", name)
			}
			if err := bindFlags(v, flagSet, field.Type, name); err != nil {
				return err
			}
			continue
		}

		flagName := field.Tag.Get("flag")
		if flagName == "" || cfg == "" {
			return fmt.Errorf("field %q does not have required tags (cfg, flag)", name)
		}
		if flagSet == nil {
			return errors.New("flagset cannot be nil")
		}
		f := flagSet.Lookup(flagName)
		if f == nil {
			return fmt.Errorf("field %q does not have a registered flag", flagName)
		}
		if err := v.BindPFlag(cfg, f); err != nil {
			return fmt.Errorf("error binding flag for field %q: %w", name, err)
		}
	}
	return nil
}

// LoadYAML strictly decodes the YAML file configFileName into into, after
// expanding ${VAR} references from the environment.
func LoadYAML(configFileName string, into interface{}) error {
	if configFileName == "" {
		return errors.New("no configuration file provided")
	}

	raw, err := os.ReadFile(configFileName)
	if err != nil {
		return fmt.Errorf("unable to load config file: %w", err)
	}
	expanded, err := envsubst.Bytes(raw)
	if err != nil {
		return fmt.Errorf("error in substituting env variables : %w", err)
	}

	if err := yaml.UnmarshalStrict(expanded, into, yaml.DisallowUnknownFields); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}
	return nil
}

// LoadPathRules applies the path rules file named in the options, if any,
// over the flag and config values.
func LoadPathRules(opts *Options) error {
	if opts.Paths.PathRulesFile == "" {
		return nil
	}
	rules := &PathRules{}
	if err := LoadYAML(opts.Paths.PathRulesFile, rules); err != nil {
		return fmt.Errorf("failed to load path rules: %w", err)
	}
	opts.ApplyPathRules(rules)
	return nil
}
