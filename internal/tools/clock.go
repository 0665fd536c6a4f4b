package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type clockInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema_description:"IANA timezone name, e.g. Europe/Berlin. Defaults to the local timezone."`
}

// Clock reports the current date and time.
func Clock() Tool {
	return Tool{
		Name:        "clock",
		Description: "Get the current date and time, optionally in a specific timezone.",
		Parameters:  schemaFor[clockInput](),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in clockInput
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("decode arguments: %w", err)
			}
			loc := time.Local
			if in.Timezone != "" {
				var err error
				if loc, err = time.LoadLocation(in.Timezone); err != nil {
					return "", fmt.Errorf("unknown timezone %q", in.Timezone)
				}
			}
			return time.Now().In(loc).Format(time.RFC1123), nil
		},
	}
}
