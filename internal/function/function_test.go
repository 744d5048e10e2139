package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNest(t *testing.T) {
	appendName := func(name string) func(string) string {
		return func(inner string) string {
			return name + "(" + inner + ")"
		}
	}

	assert.Equal(t, "a(b(c(final)))", Nest("final", appendName("a"), appendName("b"), appendName("c")))
	assert.Equal(t, "final", Nest("final"))
}
