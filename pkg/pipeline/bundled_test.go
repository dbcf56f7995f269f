package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/modules/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var siteSettings = module.Settings{
	Maintainer:   "Ops <ops@example.com>",
	Section:      "scramjet",
	Architecture: "all",
	LAN:          []string{"192.168.0.0/16"},
}

func TestScenarioControlOnly(t *testing.T) {
	dir := unitDir(t, map[string]string{
		"DEBIAN.yml": "description: x\napt: [foo]\n",
	})
	arch := &fakeArchiver{}
	p := New(Options{Modules: catalog.Default(), Settings: siteSettings, Archiver: arch})

	res, err := p.Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "Package: web\n"+
		"Version: 1\n"+
		"Architecture: all\n"+
		"Maintainer: Ops <ops@example.com>\n"+
		"Section: scramjet\n"+
		"Depends: foo\n"+
		"Description: x\n", arch.control)
	assert.Empty(t, res.Scripts)
	assert.Empty(t, res.Files)
	for _, phase := range ledger.Phases {
		_, ok := arch.files["/DEBIAN/"+string(phase)]
		assert.False(t, ok, string(phase))
	}
	assert.Equal(t, "1", readVersion(t, dir))
}

func TestBundledModulesEndToEnd(t *testing.T) {
	dir := unitDir(t, map[string]string{
		"DEBIAN.yml": "description: demo service\n" +
			"users:\n  - name: demo\n" +
			"firewall:\n  internal: [8080]\n",
		"lib/systemd/system/demo.service": "[Service]\nExecStart=/usr/bin/demo\n[Install]\nWantedBy=multi-user.target\n",
		"usr/bin/demo":                    "#!/bin/sh\nexec sleep infinity\n",
		"postinst.sh":                     "echo installed\n",
		"purge.sh":                        "rm -rf /var/lib/demo\n",
	})
	arch := &fakeArchiver{}
	p := New(Options{Modules: catalog.Default(), Settings: siteSettings, Archiver: arch})

	res, err := p.Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"/lib/systemd/system/demo.service", "/usr/bin/demo"}, res.Files)
	assert.Contains(t, arch.control, "Pre-Depends: ufw\n")

	preinst, ok := res.Script(ledger.Preinst)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(preinst, "#!/bin/bash\nset -e\n"))
	assert.Contains(t, preinst, "adduser --system --group demo --home /dev/null")
	assert.Contains(t, preinst, "ufw allow from 192.168.0.0/16 to any port 8080")
	assert.Contains(t, preinst, "dpkg-divert --rename --divert /usr/bin/demo.ucf-dist --add /usr/bin/demo")

	postinst, ok := res.Script(ledger.Postinst)
	require.True(t, ok)
	reload := strings.Index(postinst, "systemctl daemon-reload")
	fragment := strings.Index(postinst, "echo installed")
	enable := strings.Index(postinst, "systemctl enable demo.service")
	require.True(t, reload >= 0 && fragment >= 0 && enable >= 0, postinst)
	assert.Less(t, reload, fragment, "internal triggers run first")
	assert.Less(t, fragment, enable, "late actions run last")

	postrm, ok := res.Script(ledger.Postrm)
	require.True(t, ok)
	assert.Contains(t, postrm, "deluser demo")
	assert.Contains(t, postrm, "if [[ \"$1\" == \"purge\" ]]; then")
	assert.Contains(t, postrm, "rm -rf /var/lib/demo")

	assert.Equal(t, "#!/bin/sh\nexec sleep infinity\n", arch.files["/usr/bin/demo"])
}

func TestBlockScalarDescriptionIsFolded(t *testing.T) {
	dir := unitDir(t, map[string]string{
		"DEBIAN.yml": "description: |\n  first line\n  Depends: evil\n",
	})
	arch := &fakeArchiver{}
	p := New(Options{Modules: catalog.Default(), Settings: siteSettings, Archiver: arch})

	_, err := p.Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Contains(t, arch.control, "Description: first line\n Depends: evil\n")
	assert.NotContains(t, arch.control, "\nDepends: evil")
}
