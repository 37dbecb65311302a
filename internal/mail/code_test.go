package mail

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := GenerateCode()
		assert.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestCodesMatch(t *testing.T) {
	assert.True(t, CodesMatch("1234", "1234"))
	assert.False(t, CodesMatch("1234", "4321"))
	assert.False(t, CodesMatch("1234", "123"))
	assert.False(t, CodesMatch("", "1234"))
	assert.True(t, CodesMatch("", ""))
}
