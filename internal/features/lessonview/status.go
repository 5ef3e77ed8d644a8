package lessonview

import "github.com/mo-amir99/lms-progress-server/pkg/types"

// ViewedCondition is the SQL form of Status for a query aliasing lesson_views
// as lv and lessons as l.
const ViewedCondition = "lv.view_duration * 5 >= l.duration * 4"

// Status reports viewed once at least 80% of the lesson was watched.
// Integer arithmetic keeps the threshold exact; a zero-length lesson is always viewed.
func Status(viewDuration, lessonDuration int) types.ViewStatus {
	if 5*int64(viewDuration) >= 4*int64(lessonDuration) {
		return types.ViewStatusViewed
	}
	return types.ViewStatusNotViewed
}
