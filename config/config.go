package config

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/spf13/viper"

	"github.com/cradle-di/cradle/option"
)

type (
	// Options controls how a configuration struct is loaded.
	Options struct {
		prefix string
	}

	// WithDefault lets a configuration struct fill in its own defaults
	// after loading.
	WithDefault interface {
		ApplyDefault()
	}
)

func WithEnvPrefix(prefix string) option.Option[Options] {
	return func(opts *Options) {
		opts.prefix = prefix
	}
}

// Load populates a configuration struct of type T from environment
// variables through Viper. Nested struct pointers are initialized even when
// no variable targets them, and any (sub)struct implementing WithDefault
// gets its defaults applied.
func Load[T any](opts ...option.Option[Options]) (*T, error) {
	options := option.Build(&Options{}, opts...)

	v := viper.New()
	v.SetEnvPrefix(options.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var vT T
	bindEnvs(v, options.prefix, reflect.New(reflect.TypeOf(vT)).Elem().Interface())

	if err := v.Unmarshal(&vT); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	finalize(reflect.ValueOf(&vT))

	return &vT, nil
}

// finalize walks the struct, allocates nil struct pointers and applies
// defaults bottom-up.
func finalize(val reflect.Value) {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			if !val.CanSet() || val.Type().Elem().Kind() != reflect.Struct {
				return
			}
			val.Set(reflect.New(val.Type().Elem()))
		}
		if val.Type().Elem().Kind() == reflect.Struct {
			finalize(val.Elem())
		}
		if withDefault, ok := val.Interface().(WithDefault); ok {
			withDefault.ApplyDefault()
		}
		return
	}
	if val.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < val.NumField(); i++ {
		finalize(val.Field(i))
	}
}

func bindEnvs(viperI *viper.Viper, envPrefix string, myStruct any, parts ...string) {
	ifv := reflect.ValueOf(myStruct)
	ift := reflect.TypeOf(myStruct)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			tv = t.Name
		}
		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(viperI, envPrefix, v.Interface(), append(parts, tv)...)
		case reflect.Pointer:
			if t.Type.Elem().Kind() == reflect.Struct {
				bindEnvs(viperI, envPrefix, reflect.Zero(t.Type.Elem()).Interface(), append(parts, tv)...)
			}
		default:
			key := strings.Join(append(parts, tv), ".")
			join := strings.Join(append(parts, toScreamingSnakeCase(tv)), ".")
			_ = viperI.BindEnv(key, mergeWithEnvPrefix(envPrefix, join))
		}
	}
}

func mergeWithEnvPrefix(envPrefix string, in string) string {
	if envPrefix != "" {
		return strings.ToUpper(envPrefix + "_" + in)
	}

	return strings.ToUpper(in)
}

// toScreamingSnakeCase turns FooBar into FOO_BAR, customerId into
// CUSTOMER_ID.
func toScreamingSnakeCase(in string) string {
	var b strings.Builder
	for i, r := range in {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
