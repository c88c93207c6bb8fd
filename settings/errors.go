package settings

import "errors"

// ErrInvalidSettings indicates a settings file with out-of-range or unknown values.
var ErrInvalidSettings = errors.New("settings: invalid settings")
