package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrepareURLForDB(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "postgres://u:p@host:5432/db", "postgres://u:p@host:5432/db?sslmode=disable"},
		{"with params", "postgres://host/db?x=1", "postgres://host/db?x=1&sslmode=disable"},
		{"already set", "postgres://host/db?sslmode=disable", "postgres://host/db?sslmode=disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, prepareURLForDB(tt.url))
		})
	}
}
