package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-c", "conf.json", "-a", ":8080"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "equals form",
			args:         []string{"-config=alt.json", "-a", ":8080"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "flag without value followed by flag",
			args:         []string{"-c", "-a", ":8080"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "unknown flags dropped",
			args:         []string{"-x", "1", "-y=2"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "order preserved",
			args:         []string{"-a", ":1", "-d", "dsn", "-s", "key"},
			allowedFlags: []string{"-s", "-a"},
			want:         []string{"-a", ":1", "-s", "key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFile(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-a", ":8080", "-c", "short.json"}
	assert.Equal(t, "short.json", ConfigFile())

	os.Args = []string{"bin", "-config=long.json"}
	assert.Equal(t, "long.json", ConfigFile())

	os.Args = []string{"bin", "-a", ":8080"}
	assert.Equal(t, "", ConfigFile())
}

func TestEnvFile(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-env", "prod.env", "-c", "x.json"}
	assert.Equal(t, "prod.env", EnvFile())

	os.Args = []string{"bin"}
	assert.Equal(t, "", EnvFile())
}
