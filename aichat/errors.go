package aichat

import "errors"

// ErrTransformation wraps every failure to produce a transformation:
// missing key, rejected request, refusal, or empty content.
var ErrTransformation = errors.New("aichat: transformation failed")
