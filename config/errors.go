package config

import "errors"

// ErrParseEnvironment indicates environment variables could not be parsed
// into the configuration struct.
var ErrParseEnvironment = errors.New("failed to parse environment")
