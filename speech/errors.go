package speech

import "errors"

// ErrSpeech wraps every failure of the synthesis pipeline: missing key,
// rejected request, or an empty audio payload.
var ErrSpeech = errors.New("speech: synthesis failed")
