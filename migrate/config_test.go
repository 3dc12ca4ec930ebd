package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()

	require.Equal(t, "cocotb.coroutine", r.Marker)
	require.Equal(t, "ReturnValue", r.ReturnException)
	require.Equal(t, "cocotb.start_soon", r.UnwrapScheduler)
	require.Equal(t, "start", r.UnwrapMethod)
	require.Equal(t, "cocotb.start_soon", r.CallRenames["fork"])
	require.Equal(t, "unit", r.KeywordRenames["Clock"]["units"])
	require.Contains(t, r.KeywordRemovals["start"], "cycles")
	require.Contains(t, r.RemovedAttributes, "frequency")
	require.Equal(t, "cocotb.triggers", r.QualifiedNames["RisingEdge"])
}

func TestLoadRulesMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	content := `
return-exception = "TestReturn"
unwrap-scheduler = "cocotb.scheduler.add"

[call-renames]
spawn = "cocotb.start_soon"

[qualified-names]
Lock = "cocotb.triggers"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := LoadRules(path)
	require.NoError(t, err)

	require.Equal(t, "TestReturn", r.ReturnException)
	require.Equal(t, "cocotb.scheduler.add", r.UnwrapScheduler)
	require.Equal(t, "start", r.UnwrapMethod, "defaults survive a partial override")
	require.Equal(t, "cocotb.start_soon", r.CallRenames["spawn"])
	require.Equal(t, "cocotb.start_soon", r.CallRenames["fork"], "defaults survive a partial override")
	require.Equal(t, "cocotb.triggers", r.QualifiedNames["Lock"])
	require.Equal(t, "cocotb.coroutine", r.Marker)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestCatalogueOrder(t *testing.T) {
	passes := Catalogue(DefaultRules())

	var names []string
	for _, p := range passes {
		names = append(names, p.Name())
	}
	require.Equal(t, []string{
		"coroutine-to-async",
		"yield-to-await",
		"raise-return",
		"call-rename",
		"start-soon-unwrap",
		"keyword-rename",
		"keyword-removal",
		"removed-attribute",
		"qualify",
	}, names)
}

func TestCustomRulesDriveThePasses(t *testing.T) {
	r := DefaultRules()
	r.CallRenames["spawn"] = "cocotb.start_soon"

	res, err := Run([]byte("spawn(coro)\n"), Catalogue(r))
	require.NoError(t, err)
	require.Equal(t, "cocotb.start_soon(coro)\n", string(res.Output))
}

func TestCustomUnwrapTables(t *testing.T) {
	r := DefaultRules()
	r.UnwrapScheduler = "cocotb.scheduler.add"
	r.UnwrapMethod = "run"

	res, err := Run([]byte("cocotb.scheduler.add(driver.run())\n"), Catalogue(r))
	require.NoError(t, err)
	require.Equal(t, "driver.run()\n", string(res.Output))

	// The default pairing no longer applies once overridden.
	res, err = Run([]byte("cocotb.start_soon(clock.start())\n"), Catalogue(r))
	require.NoError(t, err)
	require.False(t, res.Changed)
}
