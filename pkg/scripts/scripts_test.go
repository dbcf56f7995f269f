package scripts

import (
	"strings"
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPreinst(t *testing.T) {
	got := Render(ledger.Preinst, []string{"adduser --system web", "mkdir -p /srv/web"}, nil)

	want := "#!/bin/bash\nset -e" +
		"\n\n(\nadduser --system web\n)" +
		"\n\n(\nmkdir -p /srv/web\n)" +
		"\n\nexit 0\n"
	assert.Equal(t, want, got)
}

func TestRenderPostinstHasNoSetE(t *testing.T) {
	got := Render(ledger.Postinst, []string{"echo on"}, []string{"rm -r /srv"})

	assert.Equal(t, "#!/bin/bash\n\n(\necho on\n)\n\nexit 0\n", got)
	assert.NotContains(t, got, "set -e")
}

func TestRenderPostrmWithPurges(t *testing.T) {
	got := Render(ledger.Postrm, []string{"deluser web"}, []string{"rm -r /srv/web"})

	want := "#!/bin/bash" +
		"\n\nif [[ \"$1\" == \"purge\" ]]; then" +
		"\n\n(\nrm -r /srv/web\n)" +
		"\n\nexit 0; fi" +
		"\n\n(\ndeluser web\n)" +
		"\n\nexit 0\n"
	assert.Equal(t, want, got)
}

func TestRenderPostrmWithoutPurges(t *testing.T) {
	got := Render(ledger.Postrm, []string{"deluser web"}, nil)
	assert.NotContains(t, got, "purge")
}

func TestEmitOmitsEmptyPhases(t *testing.T) {
	l := ledger.New("m")
	require.NoError(t, l.AddAction("echo on", "echo off", ledger.After, ledger.Early))

	plan, err := ledger.Merge(ledger.Tiered, []*ledger.Ledger{l})
	require.NoError(t, err)

	out, err := Emit(plan)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, ledger.Postinst, out[0].Phase)
	assert.Contains(t, out[0].Content, "echo on")
	assert.Equal(t, ledger.Prerm, out[1].Phase)
	assert.Contains(t, out[1].Content, "echo off")
}

func TestEmitPurgeOnlyPostrm(t *testing.T) {
	l := ledger.New("m")
	l.AddPurge("rm -r /srv/data")

	plan, err := ledger.Merge(ledger.Tiered, []*ledger.Ledger{l})
	require.NoError(t, err)

	out, err := Emit(plan)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, ledger.Postrm, out[0].Phase)
	assert.True(t, strings.HasPrefix(out[0].Content, "#!/bin/bash\n\nif [[ \"$1\" == \"purge\" ]]; then"))
}

func TestEmitNothing(t *testing.T) {
	plan, err := ledger.Merge(ledger.Tiered, []*ledger.Ledger{ledger.New("m")})
	require.NoError(t, err)

	out, err := Emit(plan)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEmitIsDeterministic(t *testing.T) {
	build := func() []Script {
		a, b := ledger.New("a"), ledger.New("b")
		require.NoError(t, a.AddAction("echo a", "echo undo a", ledger.Before, ledger.Late))
		require.NoError(t, b.AddAction("echo b", "", ledger.Before, ledger.Early))
		a.AddTrigger("systemctl daemon-reload", true)
		b.AddPurge("rm -r /srv/b")

		plan, err := ledger.Merge(ledger.Tiered, []*ledger.Ledger{a, b})
		require.NoError(t, err)
		out, err := Emit(plan)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, build(), build())
}
