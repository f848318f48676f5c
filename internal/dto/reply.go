package dto

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// DecodeReply converts a raw JSON object returned by the booking service into a Reply.
// Values that are not strings (hotel lists, numbers, validation error arrays) are
// rendered to text instead of failing the decode.
func DecodeReply(raw map[string]any) (domain.Reply, error) {
	var reply domain.Reply

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       textHook,
		WeaklyTypedInput: true,
		Result:           &reply,
		TagName:          "mapstructure",
	})
	if err != nil {
		return domain.Reply{}, err
	}

	if err := decoder.Decode(raw); err != nil {
		return domain.Reply{}, fmt.Errorf("failed to decode reply: %w", err)
	}
	reply.Raw = raw
	return reply, nil
}

// textHook flattens composite JSON values into readable text for string fields.
func textHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || data == nil {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return v, nil
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			lines = append(lines, renderItem(item))
		}
		return strings.Join(lines, "\n"), nil
	case map[string]any:
		if msg, ok := v["msg"].(string); ok {
			return msg, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case bool:
		// Weak decoding turns false into "0"; a false flag is an absent field.
		if !v {
			return "", nil
		}
	}
	return data, nil
}

func renderItem(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		// FastAPI validation errors carry a human readable "msg".
		if msg, ok := v["msg"].(string); ok {
			return msg
		}
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
