package cache

import "errors"

// ErrNilLoader is returned when Get is called without a loader.
var ErrNilLoader = errors.New("cache loader is nil")
