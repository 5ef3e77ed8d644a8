package lessonview

import "errors"

var (
	ErrViewNotFound         = errors.New("lesson view not found")
	ErrLessonMissing        = errors.New("referenced lesson does not exist")
	ErrUserMissing          = errors.New("referenced user does not exist")
	ErrNegativeViewDuration = errors.New("view duration must not be negative")
	ErrViewExceedsDuration  = errors.New("view duration exceeds lesson duration")
)

const duplicateMessage = "A view for this lesson and user already exists."
