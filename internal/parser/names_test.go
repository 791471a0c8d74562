package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanPersonName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Priya Sharma", "Priya Sharma"},
		{"collapses whitespace and punctuation", "  Priya,   Sharma. ", "Priya Sharma"},
		{"drops label residue", "ane PRITI SAMADHAN PATIL", "PRITI SAMADHAN PATIL"},
		{"drops short leading token", "Mr RAHUL KUMAR", "RAHUL KUMAR"},
		{"keeps two token name with short first token", "Om Prakash", "Om Prakash"},
		{"stops at stray trailing fragment", "RAHUL KUMAR s VERMA", "RAHUL KUMAR"},
		{"drops trailing boilerplate", "RAHUL KUMAR Holder Signature", "RAHUL KUMAR"},
		{"digits only", "1234 5678", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanPersonName(tt.in))
		})
	}
}

func TestCleanPersonNameIdempotent(t *testing.T) {
	inputs := []string{
		"Priya Sharma",
		"ane PRITI SAMADHAN PATIL",
		"Mr RAHUL KUMAR Holder",
		"Namrata Devi Singh",
		"RAHUL KUMAR s VERMA",
		"प्रिया शर्मा",
	}
	for _, in := range inputs {
		once := CleanPersonName(in)
		assert.Equal(t, once, CleanPersonName(once), "input %q", in)
	}
}

func TestIsMostlyEnglish(t *testing.T) {
	assert.True(t, IsMostlyEnglish("Priya Sharma"))
	assert.False(t, IsMostlyEnglish("प्रिया शर्मा"))
	assert.False(t, IsMostlyEnglish("1234"))
	assert.True(t, IsMostlyEnglish("Priya Sharma प्रि"))
}
