package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("populates the config", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{
			"-target", "XG",
			"-target", "GCSA + LCP",
			"-provide", "Reference FASTA=ref.fasta",
			"-provide", "Phased VCF=a.phased.vcf,b.phased.vcf",
			"-prefix", "out/sample",
			"-keep-intermediates",
			"-log-level", "debug",
		}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		require.NotNil(t, cfg)

		assert.Equal(t, []string{"XG", "GCSA + LCP"}, cfg.Targets)
		assert.Equal(t, map[string][]string{
			"Reference FASTA": {"ref.fasta"},
			"Phased VCF":      {"a.phased.vcf", "b.phased.vcf"},
		}, cfg.Provided)
		assert.Equal(t, "out/sample", cfg.OutputPrefix)
		assert.True(t, cfg.KeepIntermediates)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("no targets prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("dot mode needs no targets", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"-dot"}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		assert.True(t, cfg.DotOnly)
	})

	t.Run("rejects malformed provide", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-target", "XG", "-provide", "just-a-file"}, &out)
		require.Error(t, err)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("rejects invalid log format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-target", "XG", "-log-format", "xml"}, &out)
		require.Error(t, err)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("rejects invalid log level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-target", "XG", "-log-level", "loud"}, &out)
		require.Error(t, err)
	})

	t.Run("environment supplies defaults", func(t *testing.T) {
		t.Setenv("VG_OUTPUT_PREFIX", "from-env")
		t.Setenv("VG_KEEP_INTERMEDIATES", "true")

		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"-target", "XG"}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "from-env", cfg.OutputPrefix)
		assert.True(t, cfg.KeepIntermediates)
	})
}
