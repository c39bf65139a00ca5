package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Tomato___Early_blight", "Tomato - Early blight"},
		{"Powdery Mildew", "Powdery Mildew"},
		{"Apple___healthy", "Apple - healthy"},
		{"Corn_(maize)___Common_rust", "Corn (maize) - Common rust"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, displayLabel(tt.raw), tt.raw)
	}
}
