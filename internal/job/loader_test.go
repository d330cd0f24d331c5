package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTypeDefinitionsFromDirParsesAllSupportedFormats(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "chop_wood.json"),
		[]byte(`{"name":"chop_wood","requirements":["Tool:Axe"],"duration":5}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine_ore.yaml"),
		[]byte("name: mine_ore\nrequirements:\n  - Tool:Pickaxe\nduration: 8\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "smelt.toml"),
		[]byte("name = \"smelt\"\nduration = 12\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not a job type"), 0o644))

	defs, err := LoadTypeDefinitionsFromDir(dir)
	require.NoError(t, err)
	require.Len(t, defs, 3)

	names := map[string]TypeDefinition{}
	for _, d := range defs {
		names[d.Name] = d
	}
	assert.Equal(t, []string{"Tool:Axe"}, names["chop_wood"].Requirements)
	assert.Equal(t, 5.0, names["chop_wood"].Duration)
	assert.Equal(t, []string{"Tool:Pickaxe"}, names["mine_ore"].Requirements)
	assert.Equal(t, 12.0, names["smelt"].Duration)
}

func TestLoadTypeDefinitionsFromDirMissingDirIsNotAnError(t *testing.T) {
	defs, err := LoadTypeDefinitionsFromDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Nil(t, defs)
}

func TestLoadTypeDefinitionsFromDirSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "ignored.json"), []byte(`{"name":"ignored"}`), 0o644))

	defs, err := LoadTypeDefinitionsFromDir(dir)
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoadRecipesFromDirParsesJSONOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "iron_ingot.json"), []byte(`{
		"name": "iron_ingot",
		"inputs": [{"kind": "iron_ore", "amount": 2}],
		"outputs": [{"kind": "iron_ingot", "amount": 1}],
		"duration": 10
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte("name: ignored\n"), 0o644))

	recipes, err := LoadRecipesFromDir(dir)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "iron_ingot", recipes[0].Name)
	assert.Equal(t, int64(10), recipes[0].Duration)
	assert.Equal(t, []ResourceAmount{{Kind: "iron_ore", Amount: 2}}, recipes[0].Inputs)
	assert.Equal(t, []ResourceAmount{{Kind: "iron_ingot", Amount: 1}}, recipes[0].Outputs)
}

func TestLoadRecipesFromDirMissingDirIsNotAnError(t *testing.T) {
	recipes, err := LoadRecipesFromDir(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Nil(t, recipes)
}
