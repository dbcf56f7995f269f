package websites

import (
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsites(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "site")
	m := env.Attach(New)

	stager := env.Env.Stager
	require.NoError(t, stager.Text("/etc/nginx/sites-enabled/a.conf", "", false))
	require.NoError(t, stager.Text("/etc/nginx/sites-enabled/b.conf", "", false))
	require.NoError(t, stager.Text("/etc/apache2/sites-enabled/c.conf", "", false))
	require.NoError(t, stager.Text("/etc/nginx/sites-available/a.conf", "", false))

	assert.Equal(t, []ledger.Trigger{
		{Script: "systemctl try-reload-or-restart nginx.service"},
		{Script: "systemctl try-reload-or-restart nginx.service"},
		{Script: "systemctl try-reload-or-restart apache2.service"},
	}, m.Ledger().Triggers())

	// duplicates collapse when merged
	plan := env.Plan(ledger.Tiered)
	assert.Equal(t, []string{
		"systemctl try-reload-or-restart nginx.service",
		"systemctl try-reload-or-restart apache2.service",
	}, plan.Body(ledger.Postinst))
}
