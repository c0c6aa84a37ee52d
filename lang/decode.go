package lang

import (
	"log/slog"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ByteSize is a size in bytes. Decoding accepts HOCON size strings such
// as "512KiB" or "1.5 GB".
type ByteSize int64

var (
	durationType = reflect.TypeOf(time.Duration(0))
	byteSizeType = reflect.TypeOf(ByteSize(0))
)

// Decode stores v into out, which must be a pointer to a struct, map,
// slice, or scalar. Struct fields are matched by their hocon tag, or by
// name. Scalars are converted weakly, so "8080" decodes into an int field.
// Fields of type [time.Duration] and [ByteSize] accept HOCON unit strings.
func (v *Value) Decode(out any) error {
	if v.Kind == KindBad {
		return ErrDeserialization.Wrap(v.err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "hocon",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			unitDecodeHook,
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return ErrDeserialization.Wrap(err)
	}

	if err := dec.Decode(v.Native()); err != nil {
		return ErrDeserialization.Wrap(err)
	}

	return nil
}

// unitDecodeHook converts numbers and unit strings into durations and byte
// sizes with the same rules as [Value.AsDuration] and [Value.AsBytes].
func unitDecodeHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType && to != byteSizeType {
		return data, nil
	}

	var src *Value

	switch d := data.(type) {
	case string:
		src = StringValue(d)
	case int64:
		src = IntValue(d)
	case float64:
		src = RealValue(d)
	default:
		return data, nil
	}

	if to == durationType {
		d, ok := src.AsDuration()
		if !ok {
			return nil, ErrDeserialization.With(
				slog.String("want", "duration"),
				slog.String("from", from.String()),
				slog.Any("value", data),
			)
		}

		return d, nil
	}

	n, ok := src.AsBytes()
	if !ok {
		return nil, ErrDeserialization.With(
			slog.String("want", "size"),
			slog.String("from", from.String()),
			slog.Any("value", data),
		)
	}

	return ByteSize(n), nil
}
