package vitals

import "errors"

var ErrReadingNotFound = errors.New("vital signs reading not found")
