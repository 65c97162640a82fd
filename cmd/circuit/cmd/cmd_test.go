package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/circuitfile"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeBlink(t *testing.T, dir string, withResistor bool) string {
	t.Helper()
	g := circuit.NewGraph()
	board := g.AddComponent(circuit.TypeArduinoUno, circuit.Point{X: 100, Y: 100})
	led := g.AddComponent(circuit.TypeLED, circuit.Point{X: 400, Y: 100})
	_, err := g.AddWire(board, "pin_13", led, "anode")
	require.NoError(t, err)
	_, err = g.AddWire(led, "cathode", board, "gnd_1")
	require.NoError(t, err)
	if withResistor {
		r := g.AddComponent(circuit.TypeResistor, circuit.Point{X: 400, Y: 300})
		_, err = g.AddWire(r, "t1", board, "pin_12")
		require.NoError(t, err)
	}
	path := filepath.Join(dir, "blink.json")
	require.NoError(t, circuitfile.WriteFile(path, g, "Blink"))
	return path
}

func TestValidateRunningCircuit(t *testing.T) {
	path := writeBlink(t, t.TempDir(), true)
	out, err := run(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:  running")
	assert.Contains(t, out, "Pin 13")
}

func TestValidateFailingCircuit(t *testing.T) {
	path := writeBlink(t, t.TempDir(), false)
	out, err := run(t, "validate", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "Status:  error")
}

func TestValidateMissingFile(t *testing.T) {
	_, err := run(t, "validate", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errCheckFailed)
}

func TestConvertDefaultsToOtherFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeBlink(t, dir, true)

	out, err := run(t, "convert", path)
	require.NoError(t, err)
	yamlPath := filepath.Join(dir, "blink.yaml")
	assert.Contains(t, out, "Written: "+yamlPath)

	g, snap, err := circuitfile.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, "Blink", snap.Name)
}

func TestInfo(t *testing.T) {
	path := writeBlink(t, t.TempDir(), true)
	out, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Name:       Blink")
	assert.Contains(t, out, "Components: 3")
	assert.Contains(t, out, "Arduino Uno.13 (digital) -> LED.+ (digital)")
}

func TestRenderSVG(t *testing.T) {
	dir := t.TempDir()
	path := writeBlink(t, dir, true)
	svg := filepath.Join(dir, "out.svg")

	_, err := run(t, "render", path, "-o", svg, "--simulate")
	require.NoError(t, err)
	data, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), `<line class="wire"`))

	_, err = run(t, "render", path, "-o", filepath.Join(dir, "out.bmp"))
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "catalog")
	require.NoError(t, err)
	for _, typ := range circuit.Types() {
		assert.Contains(t, out, string(typ))
	}
}

func TestSketch(t *testing.T) {
	dir := t.TempDir()
	path := writeBlink(t, dir, true)

	out, err := run(t, "sketch", path)
	require.NoError(t, err)
	assert.Contains(t, out, "// Generated sketch: Blink")
	assert.Contains(t, out, "const int LED_1_ANODE = 13;")

	ino := filepath.Join(dir, "blink.ino")
	out, err = run(t, "sketch", path, "-o", ino)
	require.NoError(t, err)
	assert.Contains(t, out, "Written: "+ino)
	data, err := os.ReadFile(ino)
	require.NoError(t, err)
	assert.Contains(t, string(data), "void loop() {")
}
