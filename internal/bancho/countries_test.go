package bancho

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountryIndex(t *testing.T) {
	assert.Equal(t, uint8(0), countryIndex("XX"))
	assert.Equal(t, uint8(2), countryIndex("AD"))
	assert.Equal(t, uint8(2), countryIndex("ad"))

	// Unknown codes map to the unknown entry.
	assert.Equal(t, uint8(0), countryIndex("ZZ"))
	assert.Equal(t, uint8(0), countryIndex(""))
}
