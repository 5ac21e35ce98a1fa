package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	// Buenos Aires Obelisco to Montevideo Plaza Independencia, ~202 km
	d := Distance(-34.6037, -58.3816, -34.9064, -56.1996)
	assert.InDelta(t, 202, d, 5)

	assert.InDelta(t, 0, Distance(-34.6, -58.4, -34.6, -58.4), 1e-9)

	// one degree of latitude is ~111.2 km
	assert.InDelta(t, 111.2, Distance(0, 0, 1, 0), 0.1)
}
