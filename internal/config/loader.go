// Package config loads the XPoster configuration: a YAML file, then
// defaults, then environment overrides declared with `env` struct tags.
//
// Environment files are read first. ENV_FILE, when set, is the only file
// read; otherwise .env.local and then .env are read, and variables already
// present in the process environment are never replaced.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "config.yml"

// ErrInvalidEnv is wrapped by EnvError.
var ErrInvalidEnv = errors.New("invalid environment override")

// EnvError reports an environment value that does not parse into its field.
type EnvError struct {
	Key   string
	Value string
	Err   error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("%s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *EnvError) Unwrap() []error { return []error{ErrInvalidEnv, e.Err} }

var durationType = reflect.TypeFor[time.Duration]()

func readEnvFiles() error {
	files := []string{".env.local", ".env"}
	if only := os.Getenv("ENV_FILE"); only != "" {
		files = []string{only}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read %s: %w", f, err)
		}
	}
	return nil
}

// Load decodes the YAML file at path into a T and applies environment
// overrides.
func Load[T any](path string) (*T, error) {
	return LoadWithDefaults[T](path, nil)
}

// LoadWithDefaults decodes path, lets setDefaults fill the gaps and applies
// environment overrides last so the environment always wins.
func LoadWithDefaults[T any](path string, setDefaults func(*T)) (*T, error) {
	if err := readEnvFiles(); err != nil {
		return nil, fmt.Errorf("environment files: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := new(T)
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if setDefaults != nil {
		setDefaults(cfg)
	}

	if err := overrideFromEnv(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigPath returns CONFIG_PATH when set, otherwise fallback.
func GetConfigPath(fallback string) string {
	if path, ok := os.LookupEnv("CONFIG_PATH"); ok && path != "" {
		return path
	}
	return fallback
}

// overrideFromEnv walks nested structs and sets every tagged field whose
// variable is non-empty.
func overrideFromEnv(v reflect.Value) error {
	if v.Kind() != reflect.Struct {
		return nil
	}

	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			if err := overrideFromEnv(field); err != nil {
				return err
			}
			continue
		}

		key := v.Type().Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		val := strings.TrimSpace(os.Getenv(key))
		if val == "" {
			continue
		}
		if err := assign(field, val); err != nil {
			return &EnvError{Key: key, Value: val, Err: err}
		}
	}
	return nil
}

func assign(field reflect.Value, val string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(val, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			switch strings.ToLower(val) {
			case "yes", "on":
				b = true
			case "no", "off":
				b = false
			default:
				return err
			}
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", field.Type().Elem())
		}
		var items []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}
