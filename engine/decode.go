package engine

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/transcriptkit/errors"
)

// DecodeConfig decodes a loosely typed factory config map into out, a
// pointer to a struct with mapstructure tags. Numbers given as strings and
// durations like "90s" are accepted.
func DecodeConfig(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return errors.Internal(err)
	}
	if err := dec.Decode(raw); err != nil {
		return errors.InvalidFormat("engine config", "mapstructure-compatible settings").WithCause(err)
	}
	return nil
}
