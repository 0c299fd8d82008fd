package logging

import "github.com/rs/zerolog"

// SensitiveDataHook marks log events whose message matches a credential
// pattern. zerolog hooks cannot rewrite the message, so redaction itself
// happens in FilteringWriter and at call sites through SafeValue.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

var _ zerolog.Hook = (*SensitiveDataHook)(nil)
