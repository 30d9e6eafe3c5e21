package mqtt

import (
	"fmt"
	"strings"
)

// Control actions accepted on <prefix>/control/<action>.
const (
	ControlStart = "start"
	ControlStop  = "stop"
)

// Controller is the part of the simulation scheduler driven over MQTT.
type Controller interface {
	Start() error
	Stop()
}

// ControlHandler returns a handler that starts or stops the simulation
// according to the last topic segment. The payload is ignored.
func ControlHandler(ctrl Controller) MessageHandler {
	return func(topic string, _ []byte) error {
		action := topic
		if i := strings.LastIndexByte(topic, '/'); i >= 0 {
			action = topic[i+1:]
		}

		switch action {
		case ControlStart:
			if err := ctrl.Start(); err != nil {
				return fmt.Errorf("starting simulation: %w", err)
			}
			return nil
		case ControlStop:
			ctrl.Stop()
			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnknownCommand, action)
		}
	}
}
