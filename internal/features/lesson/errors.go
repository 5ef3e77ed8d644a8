package lesson

import "errors"

var (
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrTitleRequired   = errors.New("lesson title is required")
	ErrTitleTooLong    = errors.New("lesson title cannot exceed 255 characters")
	ErrVideoURLInvalid = errors.New("video url must be an absolute http(s) URL")
	ErrDurationInvalid = errors.New("lesson duration cannot be negative")
)
