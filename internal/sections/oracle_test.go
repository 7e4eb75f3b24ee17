package sections

import (
	"context"
	"errors"
)

// scriptedOracle replays canned responses in order, repeating the last
// one once the script runs out.
type scriptedOracle struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (o *scriptedOracle) Invoke(_ context.Context, _, user string) (string, error) {
	o.calls++
	o.prompts = append(o.prompts, user)
	if o.err != nil {
		return "", o.err
	}
	if len(o.responses) == 0 {
		return "", errors.New("scripted oracle has no responses")
	}
	idx := o.calls - 1
	if idx >= len(o.responses) {
		idx = len(o.responses) - 1
	}
	return o.responses[idx], nil
}
