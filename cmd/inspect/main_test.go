package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

const savedPage = `<html><body>
<p>Received on: 2026-01-09 06:32 UTC</p>
<div>SWRO0003 LRCL 01090550<br>(SNOWTAM 0003<br>A) LRCL<br>B) 01090550 07 1/1/1 100/100/100 NR/NR/NR ICE/ICE/ICE)</div>
<h3>UNOFFICIAL PLAIN LANGUAGE DECODE</h3>
<p>RUNWAY 07 SURFACE CONDITION CODE 1 1 1</p>
</body></html>`

func writePage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(savedPage), 0o600))
	return path
}

func TestInspect_SavedPage(t *testing.T) {
	var opts options
	opts.Args.Inputs = []string{writePage(t, "lrcl.html")}

	var out bytes.Buffer
	require.NoError(t, inspect(context.Background(), opts, &out))

	var rec domain.StatusRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "LRCL", rec.ICAO)
	assert.Equal(t, domain.SeverityRed, rec.Severity)
	assert.Equal(t, "0003", rec.SnowtamNumber)
}

func TestInspect_ExplicitICAO(t *testing.T) {
	opts := options{ICAO: "lrcl"}
	opts.Args.Inputs = []string{writePage(t, "page.html")}

	var out bytes.Buffer
	require.NoError(t, inspect(context.Background(), opts, &out))
	assert.Contains(t, out.String(), `"icao": "LRCL"`)
}

func TestInspect_Blocks(t *testing.T) {
	opts := options{Blocks: true}
	opts.Args.Inputs = []string{writePage(t, "lrcl.html")}

	var out bytes.Buffer
	require.NoError(t, inspect(context.Background(), opts, &out))

	var blocks domain.Blocks
	require.NoError(t, json.Unmarshal(out.Bytes(), &blocks))
	assert.Equal(t, "RUNWAY 07 SURFACE CONDITION CODE 1 1 1", blocks.Decode)
}

func TestInspect_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		var opts options
		opts.Args.Inputs = []string{filepath.Join(t.TempDir(), "missing.html")}
		assert.Error(t, inspect(context.Background(), opts, &bytes.Buffer{}))
	})

	t.Run("icao with several pages", func(t *testing.T) {
		opts := options{ICAO: "LRCL"}
		opts.Args.Inputs = []string{"a.html", "b.html"}
		assert.Error(t, inspect(context.Background(), opts, &bytes.Buffer{}))
	})

	t.Run("live without placeholder", func(t *testing.T) {
		opts := options{Live: true, URL: "https://portal.example/snowtam"}
		opts.Args.Inputs = []string{"LRCL"}
		assert.Error(t, inspect(context.Background(), opts, &bytes.Buffer{}))
	})
}
