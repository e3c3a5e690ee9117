package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/viant/synctex/reader"
)

const minimalSynctex = "SyncTeX Version:1\n" +
	"Input:1:./1.tex\n" +
	"Output:pdf\n" +
	"Magnification:1000\n" +
	"Unit:1\n" +
	"X Offset:0\n" +
	"Y Offset:0\n" +
	"Content:\n" +
	"{1\n" +
	"[1,10:20,350:330,330,0\n" +
	"]\n" +
	"}\n" +
	"Postamble:\n" +
	"Count:1\n"

func newParsedScanner(t *testing.T) *Scanner {
	t.Helper()
	s := &Scanner{cfg: Default()}
	err := s.parseFrom(reader.NewFromBytes([]byte(minimalSynctex)))
	assert.NoError(t, err)
	return s
}

// TestDiagnoseRoundTripsThroughYAML mirrors the teacher's golden-YAML
// comparison idiom (analyzer_test.go): a Diagnostic marshals to YAML and
// unmarshals back into an equal value.
func TestDiagnoseRoundTripsThroughYAML(t *testing.T) {
	s := newParsedScanner(t)
	d := s.Diagnose()

	data, err := yaml.Marshal(d)
	assert.NoError(t, err)

	var roundTripped Diagnostic
	assert.NoError(t, yaml.Unmarshal(data, &roundTripped))
	assert.Equal(t, d, roundTripped)
	assert.Equal(t, int32(1), roundTripped.Version)
	assert.Equal(t, 1, roundTripped.SheetCount)
}

func TestLoadConfigOverridesDefaultsFromYAML(t *testing.T) {
	cfg, err := LoadConfig([]byte("strongMode: true\nbuildDirectory: /build\n"))
	assert.NoError(t, err)
	assert.True(t, cfg.StrongMode)
	assert.Equal(t, "/build", cfg.BuildDirectory)
	assert.Equal(t, 100, cfg.TryCount, "omitted field keeps Default()'s value")
}

func TestGetTagResolvesByExactCaseInsensitiveAndBasename(t *testing.T) {
	s := newParsedScanner(t)

	tag, ok := s.GetTag("./1.tex")
	assert.True(t, ok)
	assert.Equal(t, int32(1), tag)

	tag, ok = s.GetTag("./1.TEX")
	assert.True(t, ok)
	assert.Equal(t, int32(1), tag)

	tag, ok = s.GetTag("1.tex")
	assert.True(t, ok)
	assert.Equal(t, int32(1), tag)
}

func TestIteratorNewEditFindsVBox(t *testing.T) {
	s := newParsedScanner(t)

	// The vbox sits at sp (20,350) sized 330x330x0; pick a page point that
	// maps back (via the scanner's own unit/offset) to a hit comfortably
	// inside it, rather than hardcoding a page-point magnitude that only
	// happens to work for one particular Unit:/Magnification: pairing.
	hitSPH, hitSPV := int64(25), int64(200)
	h := float64(hitSPH)*s.Unit() + s.XOffset()
	v := float64(hitSPV)*s.Unit() + s.YOffset()

	it, err := s.IteratorNewEdit(1, h, v)
	assert.NoError(t, err)
	assert.True(t, it.HasNext())
}
