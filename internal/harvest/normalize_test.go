package harvest

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1.2万", 12000},
		{"0.29万", 2900},
		{"10万+", 100000},
		{"3456", 3456},
		{"1,234", 1234},
		{"12.7", 12},
		{"赞", 0},
		{"", 0},
		{"...", 0},
		{"1.2.3", 1},
		{"１.２万", 12000},
		{"３４５", 345},
		{"１２．５", 12},
		{"99999999999999999999万", math.MaxInt},
		{"99999999999999999999", math.MaxInt},
		{"1" + strings.Repeat("0", 400), math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCount(tt.in))
		})
	}
}

func TestHashtags(t *testing.T) {
	assert.Equal(t, []string{"调色", "胶片"}, Hashtags("夏日 #调色[话题]# #胶片[话题]#"))
	assert.Equal(t, []string{"film", "look"}, Hashtags("my #film #look"))
	assert.Empty(t, Hashtags("no tags here #"))
}
