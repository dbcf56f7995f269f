package patches

import (
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatches(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "tweaks")
	m := env.Attach(New)

	require.NoError(t, env.Env.Stager.Text("/etc/ssh/sshd_config.patch", "--- a\n+++ b\n", false))

	l := m.Ledger()
	assert.Equal(t, []string{
		"dpkg-divert --rename --divert /etc/ssh/sshd_config.ucf-dist --add /etc/ssh/sshd_config\n" +
			"cp -a /etc/ssh/sshd_config.ucf-dist /etc/ssh/sshd_config\n" +
			"patch --forward /etc/ssh/sshd_config /etc/ssh/sshd_config.patch\n" +
			"take-control-of tweaks /etc/ssh/sshd_config",
	}, l.Actions(ledger.Postinst, ledger.Early))
	assert.Equal(t, []string{
		"dpkg-divert --rename --divert /etc/ssh/sshd_config.ucf-dist --remove /etc/ssh/sshd_config",
	}, l.Actions(ledger.Postrm, ledger.Early))
	assert.Empty(t, l.All(ledger.Prerm))
}

func TestPatches_IgnoresOtherFiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "tweaks")
	m := env.Attach(New)

	require.NoError(t, env.Env.Stager.Text("/etc/ssh/sshd_config", "", false))
	require.NoError(t, env.Env.Stager.Text("/usr/share/doc/patch.txt", "", false))
	assert.True(t, m.Ledger().Empty())
}
