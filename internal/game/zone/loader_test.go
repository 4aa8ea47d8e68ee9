package zone

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lorenciaYAML = `
name: lorencia
size: 200
spawns:
  - template: slime
    anchor: {x: 20, y: 0, z: 20}
    radius: 5
    count: 3
  - template: wolf
    anchor: {x: -40, y: 0, z: -40}
    radius: 5
    count: 2
`

func TestLoadConfigFromBytes(t *testing.T) {
	cfg, err := LoadConfigFromBytes([]byte(lorenciaYAML))
	require.NoError(t, err)

	assert.Equal(t, "lorencia", cfg.Name)
	assert.Equal(t, 200, cfg.Size)
	require.Len(t, cfg.Spawns, 2)
	assert.Equal(t, "slime", cfg.Spawns[0].Template)
	assert.Equal(t, 3, cfg.Spawns[0].Count)
	assert.Equal(t, 5.0, cfg.Spawns[0].Radius)
	assert.Equal(t, -40.0, cfg.Spawns[1].Anchor.X)
}

func TestLoadConfigFromBytes_InvalidYAML(t *testing.T) {
	_, err := LoadConfigFromBytes([]byte("name: [unclosed"))
	assert.Error(t, err)
}

func TestLoadConfigFromBytes_ValidationFailures(t *testing.T) {
	cases := map[string]string{
		"missing name":  "size: 100\nspawns: []\n",
		"zero size":     "name: x\nsize: 0\n",
		"empty tmpl":    "name: x\nsize: 100\nspawns:\n  - count: 1\n",
		"zero count":    "name: x\nsize: 100\nspawns:\n  - template: slime\n    count: 0\n",
		"neg radius":    "name: x\nsize: 100\nspawns:\n  - template: slime\n    count: 1\n    radius: -1\n",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfigFromBytes([]byte(yml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lorencia.yaml"), []byte(lorenciaYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	configs, err := LoadConfigs(dir)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "lorencia", configs[0].Name)
}

func TestLoadConfigs_MissingDir(t *testing.T) {
	_, err := LoadConfigs(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
