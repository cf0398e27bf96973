package pcd8544

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is the write mode tag kept in the attribute store. It is state for
// callers to agree on: Session.Write renders text whatever the mode, raw RAM
// goes through Session.WriteRaw and commands through Session.Command.
type Mode uint8

const (
	// ModeText tags text output.
	ModeText Mode = iota
	// ModeGraph tags raw display RAM output.
	ModeGraph
	// ModeCommand tags controller command output.
	ModeCommand
	// ModeEnd is one past the last valid mode.
	ModeEnd
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeGraph:
		return "graph"
	case ModeCommand:
		return "command"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Attribute keys.
const (
	AttrBias = "bias"
	AttrMode = "mode"
)

// Attributes is a store of named scalar values, exposed as text.
type Attributes interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

var _ Attributes = &Dev{}

// Keys returns the attribute keys, in a stable order.
func (d *Dev) Keys() []string {
	return []string{AttrBias, AttrMode}
}

// Get returns the attribute key formatted as a decimal number.
func (d *Dev) Get(key string) (string, error) {
	d.attrMu.Lock()
	defer d.attrMu.Unlock()
	switch key {
	case AttrBias:
		return strconv.Itoa(int(d.bias)), nil
	case AttrMode:
		return strconv.Itoa(int(d.mode)), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownAttribute, key)
	}
}

// Set parses value and stores it in attribute key.
//
// Only mode is writable. An unparsable or out of range value leaves the
// attribute unchanged.
func (d *Dev) Set(key, value string) error {
	switch key {
	case AttrMode:
	case AttrBias:
		return fmt.Errorf("%w: %q", ErrReadOnly, key)
	default:
		return fmt.Errorf("%w %q", ErrUnknownAttribute, key)
	}

	// sysfs style writers terminate the value with a newline.
	v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 8)
	if err != nil {
		return fmt.Errorf("%w: mode %q: %w", ErrInvalidArgument, value, err)
	}
	if Mode(v) >= ModeEnd {
		return fmt.Errorf("%w: mode %d out of range [0, %d)", ErrInvalidArgument, v, ModeEnd)
	}

	d.attrMu.Lock()
	d.mode = Mode(v)
	d.attrMu.Unlock()
	d.logger.Debug().Stringer("mode", Mode(v)).Msg("mode changed")
	return nil
}

// Mode returns the current write mode.
func (d *Dev) Mode() Mode {
	d.attrMu.Lock()
	defer d.attrMu.Unlock()
	return d.mode
}

// Bias returns the bias system value sent during initialization.
func (d *Dev) Bias() uint8 {
	d.attrMu.Lock()
	defer d.attrMu.Unlock()
	return d.bias
}
