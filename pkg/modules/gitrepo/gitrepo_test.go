package gitrepo

import (
	"io/fs"
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/control"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitRepo(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "app")
	m := env.Attach(New)

	doc := "url: https://git.example/app.git\nuser: app\npost: |\n  #!/bin/sh\n  make\n"
	require.NoError(t, env.Route(router.KindGit, "/srv/app/.git.yml", doc))

	assert.Equal(t, []string{"git"}, m.Control().Values(control.PreDepends))

	l := m.Ledger()
	late := l.Actions(ledger.Preinst, ledger.Late)
	require.Len(t, late, 1)
	assert.Contains(t, late[0], "mkdir -p /srv/app\n")
	assert.Contains(t, late[0], "chown app:app /srv/app\n")
	assert.Contains(t, late[0], "sudo -u app git remote add origin https://git.example/app.git\n")
	assert.Contains(t, late[0], "sudo -u app git checkout main\n")
	assert.Equal(t, []string{"remove-managed-repo /srv/app"}, l.Actions(ledger.Postrm, ledger.Late))
	assert.Equal(t, []string{"rm -r /srv/app"}, l.Purges())
	assert.Equal(t, []string{"systemctl start srv-app.service"}, l.Actions(ledger.Postinst, ledger.Early))

	assert.Equal(t, "#!/bin/sh\nmake\n", env.Staged("/srv/app/.git/hooks/post-pull"))
	assert.Equal(t, fs.FileMode(0755), env.StagedMode("/srv/app/.git/hooks/post-pull"))
	assert.False(t, env.IsStaged("/srv/app/.git/hooks/pre-pull"))

	service := env.Staged("/lib/systemd/system/srv-app.service")
	assert.Contains(t, service, "User=app\nWorkingDirectory=/srv/app\nExecStart=/usr/sbin/update-managed-repo\n")
	assert.Contains(t, env.Staged("/lib/systemd/system/srv-app.timer"), `Description=pulling and processing git repo at "/srv/app"`)

	env.Plan(ledger.Tiered)
}

func TestDecode_Defaults(t *testing.T) {
	repo, err := Decode("/srv/x/.git.yml", router.Fields{"url": "https://git.example/x.git"})
	require.NoError(t, err)
	assert.Equal(t, Repo{URL: "https://git.example/x.git", Branch: "main", User: "root"}, repo)
}

func TestDecode_MissingURL(t *testing.T) {
	_, err := Decode("/srv/x/.git.yml", router.Fields{"branch": "dev"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}
