package command

// FrameRecorder receives every frame the State tries to transmit.
// err is nil when the frame was written.
type FrameRecorder interface {
	RecordFrame(action, frame string, err error)
}
