package productlesson

import "errors"

var (
	ErrLinkNotFound   = errors.New("product lesson not found")
	ErrProductMissing = errors.New("referenced product does not exist")
	ErrLessonMissing  = errors.New("referenced lesson does not exist")
)
