// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/solarisdb/timeguard/golibs/errors"
	"github.com/solarisdb/timeguard/golibs/logging"
)

type (
	// Enricher builds a configuration value of the struct type T by layers: the initial
	// value (defaults) is overwritten by a file, by another Enricher and by the environment
	// variables, in the order the functions are called.
	//
	// Only the exported fields are updated. A field is addressed by its name or by the name
	// from its json tag, case-insensitive, so the field
	//
	//	MaxTime Duration `json:"max"`
	//
	// may be addressed as MAXTIME or MAX.
	Enricher[T any] interface {
		// LoadFromFile reads the value from the YAML (.yaml, .yml) or JSON (.json) file. The
		// fields missed in the file keep their current values. The empty fileName is ignored.
		LoadFromFile(fileName string) error

		// ApplyOther overwrites the current value by the non-zero fields of the other's value.
		// The structs and the pointers to structs are applied field by field.
		ApplyOther(other Enricher[T]) error

		// ApplyEnvVariables applies the environment variables, which names start from prefix
		// followed by sep. The rest of the name is the path to the field, the path elements
		// are separated by sep:
		//
		//	type Inner struct {
		//		Val int
		//	}
		//	type T struct {
		//		Level string
		//		In    *Inner `json:"inner"`
		//	}
		//
		// For ApplyEnvVariables("app", "_"), APP_LEVEL=debug sets T.Level and APP_INNER_VAL=3
		// sets T.In.Val. The values are JSON, the strings may be not quoted.
		ApplyEnvVariables(prefix, sep string) error

		// ApplyKeyValues is ApplyEnvVariables for the key-values provided
		ApplyKeyValues(prefix, sep string, keyValues map[string]string) error

		// Value returns the current value
		Value() T
	}

	enricher[T any] struct {
		log logging.Logger
		val T
	}
)

// NewEnricher constructs the new Enricher with the initial value val. T must be a struct.
func NewEnricher[T any](val T) Enricher[T] {
	tp := reflect.TypeOf(val)
	if tp == nil || tp.Kind() != reflect.Struct {
		panic(fmt.Sprintf("only structs are acceptable in the Enricher, but got %v", tp))
	}
	return newEnricher(val)
}

func newEnricher[T any](val T) *enricher[T] {
	return &enricher[T]{val: val, log: logging.NewLogger("config.enricher." + reflect.TypeOf(val).Name())}
}

func (e *enricher[T]) LoadFromFile(fileName string) error {
	if fileName == "" {
		return nil
	}
	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))) {
	case ".yaml", ".yml":
		unmarshal = func(b []byte, v any) error { return yaml.Unmarshal(b, v) }
	case ".json":
		unmarshal = json.Unmarshal
	default:
		return fmt.Errorf("cannot recognize file format %s, expecting .json, .yaml or .yml: %w", fileName, errors.ErrInvalid)
	}

	e.log.Infof("reading the configuration from %s", fileName)
	buf, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("the file %s is not found: %w", fileName, errors.ErrNotExist)
		}
		return fmt.Errorf("could not read file %s: %w", fileName, err)
	}
	if err := unmarshal(buf, &e.val); err != nil {
		return fmt.Errorf("could not unmarshal the file %s: %s: %w", fileName, err, errors.ErrInvalid)
	}
	return nil
}

func (e *enricher[T]) ApplyOther(other Enricher[T]) error {
	o, ok := other.(*enricher[T])
	if !ok {
		return fmt.Errorf("unsupported enricher implementation %T: %w", other, errors.ErrInvalid)
	}
	applyValues(reflect.ValueOf(&o.val).Elem(), reflect.ValueOf(&e.val).Elem())
	return nil
}

func (e *enricher[T]) ApplyEnvVariables(prefix, sep string) error {
	env := make(map[string]string)
	for _, v := range os.Environ() {
		k, val, ok := strings.Cut(v, "=")
		if !ok {
			continue
		}
		env[k] = val
	}
	return e.ApplyKeyValues(prefix, sep, env)
}

func (e *enricher[T]) ApplyKeyValues(prefix, sep string, keyValues map[string]string) error {
	if sep == "" {
		return fmt.Errorf("the separator must not be empty: %w", errors.ErrInvalid)
	}
	sep = strings.ToUpper(sep)
	pfx := ""
	if prefix != "" {
		pfx = strings.ToUpper(prefix) + sep
	}
	for key, value := range keyValues {
		k := strings.ToUpper(key)
		if !strings.HasPrefix(k, pfx) {
			continue
		}
		path := strings.Split(k[len(pfx):], sep)
		ok, err := assign(reflect.ValueOf(&e.val).Elem(), path, value)
		if err != nil {
			return fmt.Errorf("could not apply %s=%s: %w", key, value, err)
		}
		e.log.Debugf("applying %s: %t", key, ok)
	}
	return nil
}

func (e *enricher[T]) Value() T {
	return e.val
}

// applyValues deeply copies the non-zero values of other to target
func applyValues(other, target reflect.Value) {
	if other.IsZero() {
		return
	}
	switch other.Kind() {
	case reflect.Ptr:
		if other.Elem().Kind() != reflect.Struct {
			break
		}
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}
		applyValues(other.Elem(), target.Elem())
		return
	case reflect.Struct:
		for i := 0; i < other.NumField(); i++ {
			if other.Type().Field(i).IsExported() {
				applyValues(other.Field(i), target.Field(i))
			}
		}
		return
	}
	target.Set(other)
}

// assign sets the field of the struct v addressed by path to the value s. The missing
// pointers on the path are created only if the field is found. It returns false if
// the path does not address any field.
func assign(v reflect.Value, path []string, s string) (bool, error) {
	if len(path) == 0 || path[0] == "" {
		return false, nil
	}
	if v.Kind() == reflect.Ptr {
		if v.Type().Elem().Kind() != reflect.Struct {
			return false, nil
		}
		nv := reflect.New(v.Type().Elem())
		if !v.IsNil() {
			nv.Elem().Set(v.Elem())
		}
		ok, err := assign(nv.Elem(), path, s)
		if ok && err == nil {
			v.Set(nv)
		}
		return ok, err
	}
	if v.Kind() != reflect.Struct {
		return false, nil
	}
	tp := v.Type()
	for i := 0; i < tp.NumField(); i++ {
		sf := tp.Field(i)
		if !sf.IsExported() || !matches(sf, path[0]) {
			continue
		}
		if len(path) > 1 {
			return assign(v.Field(i), path[1:], s)
		}
		return true, setFieldValueByString(v.Field(i), s)
	}
	return false, nil
}

func matches(sf reflect.StructField, name string) bool {
	if strings.EqualFold(sf.Name, name) {
		return true
	}
	alias, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	return alias != "" && alias != "-" && strings.EqualFold(alias, name)
}

// setFieldValueByString assigns the JSON value s to the field. If s is not a valid JSON,
// it is considered as a not quoted string, so both 1500ms and "1500ms" are fine for a
// field which is unmarshalled from a JSON string.
func setFieldValueByString(field reflect.Value, s string) error {
	if s == "" {
		return nil
	}
	if !field.CanSet() {
		return fmt.Errorf("the field of type %s cannot be set: %w", field.Type(), errors.ErrInvalid)
	}
	obj := reflect.New(field.Type())
	err := json.Unmarshal([]byte(s), obj.Interface())
	if err != nil && !json.Valid([]byte(s)) {
		err = json.Unmarshal([]byte(strconv.Quote(s)), obj.Interface())
	}
	if err != nil {
		return fmt.Errorf("could not assign %q to the field of type %s: %s: %w", s, field.Type(), err, errors.ErrInvalid)
	}
	field.Set(obj.Elem())
	return nil
}
