package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wirecache/wirecache/internal/proto"
)

// Mode restricts a SET to only-if-absent (NX) or only-if-present (XX).
type Mode int

const (
	ModeNone Mode = iota
	ModeNX
	ModeXX
)

// Command is a validated, typed request derived from an array-shaped
// wire value.
type Command interface {
	// Name returns the lower-case command name, as it appears on the
	// wire.
	Name() string

	isCommand()
}

// Set stores a value under a key, optionally with an expiry and an
// existence restriction. HasExpire distinguishes "no expiry given" from
// an explicit zero duration.
type Set struct {
	Key       string
	Value     Value
	Expire    time.Duration
	HasExpire bool
	Mode      Mode
}

// Get retrieves the value stored under a key.
type Get struct {
	Key string
}

// GetSet atomically stores a value and returns the previous one.
type GetSet struct {
	Key   string
	Value Value
}

// StrLen returns the length of the value stored under a key.
type StrLen struct {
	Key string
}

// Exists reports whether a key is present.
type Exists struct {
	Key string
}

// Del removes the given keys. Order is preserved and duplicates are
// allowed.
type Del struct {
	Keys []string
}

func (Set) Name() string    { return "set" }
func (Get) Name() string    { return "get" }
func (GetSet) Name() string { return "getset" }
func (StrLen) Name() string { return "strlen" }
func (Exists) Name() string { return "exists" }
func (Del) Name() string    { return "del" }

func (Set) isCommand()    {}
func (Get) isCommand()    {}
func (GetSet) isCommand() {}
func (StrLen) isCommand() {}
func (Exists) isCommand() {}
func (Del) isCommand()    {}

// Parse interprets a decoded wire value as a command. The value must be
// a non-null, non-empty array; its first element names the command
// (matched exactly against the lower-case literals) and the remaining
// elements form the argument list.
func Parse(v proto.Value) (Command, error) {
	elems, err := v.Elements()
	if err != nil {
		return nil, err
	}
	name, err := elems[0].Text()
	if err != nil {
		return nil, err
	}
	args := elems[1:]

	switch name {
	case "set":
		return parseSet(args)
	case "get":
		return parseGet(args)
	case "getset":
		return parseGetSet(args)
	case "strlen":
		return parseStrLen(args)
	case "exists":
		return parseExists(args)
	case "del":
		return parseDel(args)
	default:
		return nil, &UnknownCommandError{Name: name}
	}
}

// parseSet consumes "key value [ex seconds | px millis] [nx | xx]".
// Tokens are scanned left to right and each scan narrows the slice;
// anything left over is rejected.
func parseSet(args []proto.Value) (Command, error) {
	if len(args) < 2 {
		return nil, &ArgCountError{Required: 2, Provided: len(args)}
	}
	key, err := args[0].Text()
	if err != nil {
		return nil, err
	}
	val, err := ValueFrom(args[1])
	if err != nil {
		return nil, err
	}
	args = args[2:]

	cmd := Set{Key: key, Value: val}

	if len(args) >= 2 {
		tok, err := args[0].Text()
		if err != nil {
			return nil, err
		}
		switch tok {
		case "ex":
			secs, err := parseExpiry(args[1])
			if err != nil {
				return nil, err
			}
			cmd.Expire = time.Duration(secs) * time.Second
			cmd.HasExpire = true
			args = args[2:]
		case "px":
			millis, err := parseExpiry(args[1])
			if err != nil {
				return nil, err
			}
			cmd.Expire = time.Duration(millis) * time.Millisecond
			cmd.HasExpire = true
			args = args[2:]
		}
	}

	if len(args) >= 1 {
		tok, err := args[0].Text()
		if err != nil {
			return nil, err
		}
		switch tok {
		case "nx":
			cmd.Mode = ModeNX
			args = args[1:]
		case "xx":
			cmd.Mode = ModeXX
			args = args[1:]
		}
	}

	if len(args) > 0 {
		tok, err := args[0].Text()
		if err != nil {
			return nil, err
		}
		return nil, &UnknownOptionError{Option: tok}
	}
	return cmd, nil
}

func parseGet(args []proto.Value) (Command, error) {
	// Arguments beyond the key are ignored.
	if len(args) < 1 {
		return nil, &ArgCountError{Required: 1, Provided: 0}
	}
	key, err := args[0].Text()
	if err != nil {
		return nil, err
	}
	return Get{Key: key}, nil
}

func parseGetSet(args []proto.Value) (Command, error) {
	if len(args) != 2 {
		return nil, &ArgCountError{Required: 2, Provided: len(args)}
	}
	key, err := args[0].Text()
	if err != nil {
		return nil, err
	}
	val, err := ValueFrom(args[1])
	if err != nil {
		return nil, err
	}
	return GetSet{Key: key, Value: val}, nil
}

func parseStrLen(args []proto.Value) (Command, error) {
	if len(args) != 1 {
		return nil, &ArgCountError{Required: 1, Provided: len(args)}
	}
	key, err := args[0].Text()
	if err != nil {
		return nil, err
	}
	return StrLen{Key: key}, nil
}

func parseExists(args []proto.Value) (Command, error) {
	if len(args) != 1 {
		return nil, &ArgCountError{Required: 1, Provided: len(args)}
	}
	key, err := args[0].Text()
	if err != nil {
		return nil, err
	}
	return Exists{Key: key}, nil
}

func parseDel(args []proto.Value) (Command, error) {
	if len(args) == 0 {
		return nil, &ArgCountError{Required: 1, Provided: 0}
	}
	keys := make([]string, 0, len(args))
	for _, arg := range args {
		key, err := arg.Text()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return Del{Keys: keys}, nil
}

// parseExpiry reads the argument after an "ex" or "px" token as an
// unsigned decimal.
func parseExpiry(v proto.Value) (uint64, error) {
	s, err := v.Text()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidExpiry, s)
	}
	return n, nil
}
