package mask

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAadhaar(t *testing.T) {
	assert.Equal(t, "1234-XXXX-9012", Aadhaar("1234 5678 9012"))
	assert.Equal(t, "1234-XXXX-9012", Aadhaar("123456789012"))
	assert.Equal(t, Aadhaar("1234 5678 9012"), Aadhaar("1234 5678 9012"))
	assert.False(t, strings.Contains(Aadhaar("1234 5678 9012"), "5678"))
	assert.Equal(t, Redacted, Aadhaar("12345"))
	assert.Equal(t, Redacted, Aadhaar("UIDAI"))
	assert.Equal(t, "", Aadhaar(""))
}

func TestPAN(t *testing.T) {
	assert.Equal(t, "ABCDE-XX4F", PAN("ABCDE1234F"))
	assert.Equal(t, "ABCDE-XX4F", PAN("ABCDE 1234F"))
	assert.False(t, strings.Contains(PAN("ABCDE1234F"), "123"))
	assert.Equal(t, Redacted, PAN("ABC"))
	assert.Equal(t, Redacted, PAN("ABC  D  E  "))
	assert.Equal(t, "", PAN("  "))
}
