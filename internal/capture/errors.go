package capture

import "errors"

var (
	// ErrPermissionDenied is returned when the input device refuses access.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrCaptureSetupFailed is returned when the capture backend cannot be
	// brought up at all.
	ErrCaptureSetupFailed = errors.New("capture setup failed")

	// ErrBufferCreationFailed is returned when the backend starts but its
	// PCM pipe cannot be created.
	ErrBufferCreationFailed = errors.New("capture buffer creation failed")
)
