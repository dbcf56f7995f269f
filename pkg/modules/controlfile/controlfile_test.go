package controlfile

import (
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/control"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlFile(t *testing.T) {
	tests := []struct {
		name     string
		document string
		check    func(t *testing.T, c *control.Fragment)
	}{
		{
			name:     "description and site fields",
			document: "description: web server\n",
			check: func(t *testing.T, c *control.Fragment) {
				assert.Equal(t, []string{"web server"}, c.Values(control.Description))
				assert.Equal(t, []string{"all"}, c.Values(control.Architecture))
				assert.Equal(t, []string{"Ops <ops@example.com>"}, c.Values(control.Maintainer))
				assert.Equal(t, []string{"scramjet"}, c.Values(control.Section))
				assert.Empty(t, c.Values(control.Depends))
			},
		},
		{
			name:     "apt becomes depends",
			document: "description: x\napt: [nginx, curl]\n",
			check: func(t *testing.T, c *control.Fragment) {
				assert.Equal(t, []string{"nginx", "curl"}, c.Values(control.Depends))
			},
		},
		{
			name:     "depreciates fills provides conflicts replaces",
			document: "description: x\ndepreciates: [old-web]\n",
			check: func(t *testing.T, c *control.Fragment) {
				for _, f := range []control.Field{control.Provides, control.Conflicts, control.Replaces} {
					assert.Equal(t, []string{"old-web"}, c.Values(f), string(f))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewTestEnvironment(t, "web")
			m := env.Attach(New)

			require.NoError(t, env.Route(router.KindDebian, "/DEBIAN.yml", tt.document))
			tt.check(t, m.Control())
			assert.True(t, m.Ledger().Empty())
		})
	}
}

func TestControlFile_NoDocument(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "web")
	m := env.Attach(New)

	assert.True(t, m.Control().Empty())
}
