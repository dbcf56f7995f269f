package secure

import (
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecure(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "app")
	m := env.Attach(New)

	doc := "secure:\n  www: [/etc/app/key]\n  app: [/etc/app/token, /var/lib/app]\n"
	require.NoError(t, env.Route(router.KindDebian, "/DEBIAN.yml", doc))

	actions := m.Ledger().Actions(ledger.Postinst, ledger.Early)
	require.Len(t, actions, 3)

	// users are visited in sorted order so output is stable
	assert.Contains(t, actions[0], "chmod go-rwx /etc/app/token")
	assert.Contains(t, actions[1], "/var/lib/app")
	assert.Contains(t, actions[2], "chmod go-rwx /etc/app/key")
	assert.Contains(t, actions[2], "chown ")
	assert.Contains(t, actions[2], "www:www")

	assert.Empty(t, m.Ledger().All(ledger.Prerm))
	assert.Empty(t, m.Ledger().All(ledger.Preinst))
}

func TestSecure_Snippets_Parse(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "app")
	env.Attach(New)

	require.NoError(t, env.Route(router.KindDebian, "/DEBIAN.yml", "secure:\n  app: [\"/srv/my dir\"]\n"))
	plan := env.Plan(ledger.Tiered)
	assert.Len(t, plan.Body(ledger.Postinst), 1)
}
