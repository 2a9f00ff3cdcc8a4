//nolint:funlen // ok for tests
package log

import (
	"bytes"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    *Config
		wantErr bool
	}{
		{
			name: "defaults",
			data: "",
			want: &Config{Level: "info", Format: "json"},
		},
		{
			name: "full",
			data: "level: debug\nformat: text\nfilter: \"info+:* debug+:db\"\n",
			want: &Config{Level: "debug", Format: "text", Filter: "info+:* debug+:db"},
		},
		{
			name:    "broken yaml",
			data:    "level: [debug",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfig([]byte(tt.data))
			if tt.wantErr {
				assert.Assert(t, err != nil)
				return
			}
			assert.NilError(t, err)
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestConfigBuild(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Level: "debug", Format: "json", Filter: "info+:* debug+:db"}
	l, err := cfg.Build(&buf)
	assert.NilError(t, err)

	l.Named("db").Debug("visible")
	l.Named("analysis").Debug("hidden")
	l.Named("analysis").Info("shown")

	out := buf.String()
	assert.Assert(t, strings.Contains(out, "visible"))
	assert.Assert(t, !strings.Contains(out, "hidden"))
	assert.Assert(t, strings.Contains(out, "shown"))
}

func TestConfigBuildUnknownFormat(t *testing.T) {
	_, err := (&Config{Format: "xml"}).Build(&bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown log format")
}

func TestSetLevelIsShared(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	child := l.Named("child")
	child.Debug("before")
	l.SetLevel(DebugLevel)
	child.Debug("after")
	assert.Assert(t, !strings.Contains(buf.String(), "before"))
	assert.Assert(t, strings.Contains(buf.String(), "after"))
}
