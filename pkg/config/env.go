package config

import (
	"encoding"
	"fmt"
	"os"
	"reflect"
	"strconv"
)

// applyEnvOverrides 按 env 标签用环境变量覆盖字段，未设置或为空的变量被忽略
func applyEnvOverrides(cfg *Config) error {
	return applyEnvToStruct(reflect.ValueOf(cfg).Elem())
}

func applyEnvToStruct(val reflect.Value) error {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}

		if key := typ.Field(i).Tag.Get("env"); key != "" {
			if raw := os.Getenv(key); raw != "" {
				if err := setFieldValue(field, raw); err != nil {
					return fmt.Errorf("env %s=%q: %w", key, raw, err)
				}
				continue
			}
		}

		if field.Kind() == reflect.Struct {
			if err := applyEnvToStruct(field); err != nil {
				return err
			}
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, raw string) error {
	if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
		return u.UnmarshalText([]byte(raw))
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw, 0, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(raw, 0, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(v)
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(v)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
