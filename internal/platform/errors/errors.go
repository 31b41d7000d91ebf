package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrCameraUnavailable   = errors.New("camera unavailable")
	ErrScreenUnavailable   = errors.New("screen capture unavailable")
	ErrEmptyRaster         = errors.New("rasterization produced an empty image")
	ErrShareAborted        = errors.New("share aborted")
	ErrShareUnavailable    = errors.New("share target unavailable")
)
