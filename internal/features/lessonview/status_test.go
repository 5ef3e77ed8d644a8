package lessonview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mo-amir99/lms-progress-server/pkg/types"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		view, duration int
		want           types.ViewStatus
	}{
		{0, 0, types.ViewStatusViewed},
		{10, 0, types.ViewStatusViewed},
		{79, 100, types.ViewStatusNotViewed},
		{80, 100, types.ViewStatusViewed},
		{100, 100, types.ViewStatusViewed},
		{0, 100, types.ViewStatusNotViewed},
		{3, 4, types.ViewStatusNotViewed},
		{4, 5, types.ViewStatusViewed},
		{7, 9, types.ViewStatusNotViewed},
		{8, 9, types.ViewStatusViewed},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.view, tc.duration), "view=%d duration=%d", tc.view, tc.duration)
	}
}

func TestToResponseDerivesStatus(t *testing.T) {
	view := LessonView{ViewDuration: 50}
	assert.Equal(t, types.ViewStatusNotViewed, view.ToResponse(100).Status)
	assert.Equal(t, types.ViewStatusViewed, view.ToResponse(60).Status)
	assert.Equal(t, 50, view.ToResponse(60).ViewDuration)
}
