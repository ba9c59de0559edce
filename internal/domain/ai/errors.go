package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// NoReplyText is used as the reply when the provider answered without any text.
const NoReplyText = "unable to obtain AI analysis result"
