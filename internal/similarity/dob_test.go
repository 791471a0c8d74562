package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDOBDistance(t *testing.T) {
	assert.Equal(t, 0, DOBDistance("15/08/1990", "15-08-1990"))
	assert.Equal(t, 1, DOBDistance("15/08/1990", "15/08/1996"))
	assert.Equal(t, 2, DOBDistance("15/08/1990", "16/08/1991"))
	assert.Equal(t, DOBMaxDistance, DOBDistance("15/08/1990", "15/08/90"))
	assert.Equal(t, DOBMaxDistance, DOBDistance("", "15/08/1990"))
}

func TestDOBNearEqual(t *testing.T) {
	assert.True(t, DOBNearEqual("15/08/1990", "15-08-1990"))
	assert.True(t, DOBNearEqual("15/08/1990", "15/08/1996"))
	assert.False(t, DOBNearEqual("15/08/1990", "16/08/1991"))
	assert.False(t, DOBNearEqual("", ""))
}

func TestDOBNearEqualSymmetric(t *testing.T) {
	samples := []string{"", "15/08/1990", "15-08-1996", "16/08/1991", "150890", "1/1/2000", "abc"}
	for _, a := range samples {
		for _, b := range samples {
			assert.Equal(t, DOBNearEqual(a, b), DOBNearEqual(b, a), "%q vs %q", a, b)
			assert.Equal(t, DOBDistance(a, b), DOBDistance(b, a), "%q vs %q", a, b)
		}
	}
}
