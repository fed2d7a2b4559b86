package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// decodeHook converts the string forms viper hands back from YAML files,
// flags and the environment into typed config values.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToNetworkHookFunc(),
	)
}

// stringToNetworkHookFunc normalizes network names ("UNIX", " tcp ") and
// accepts "npipe" as an alias for named pipes.
func stringToNetworkHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeFor[Network]() {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, fmt.Errorf("network: unexpected %T", data)
		}
		name := strings.ToLower(strings.TrimSpace(s))
		if name == "npipe" {
			name = string(NetworkPipe)
		}
		return Network(name), nil
	}
}
