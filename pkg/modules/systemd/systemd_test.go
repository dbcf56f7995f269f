package systemd

import (
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnits_InstallSection(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "app")
	m := env.Attach(NewUnits)

	require.NoError(t, env.Env.Stager.Text(UnitDir+"/app.service", "[Service]\nExecStart=/bin/true\n[Install]\nWantedBy=multi-user.target\n", false))
	require.NoError(t, env.Env.Stager.Text(UnitDir+"/helper.service", "[Service]\nExecStart=/bin/true\n", false))

	l := m.Ledger()
	assert.Equal(t, []ledger.Trigger{{Script: DaemonReload, Internal: true}, {Script: DaemonReload, Internal: true}}, l.Triggers())

	late := l.Actions(ledger.Postinst, ledger.Late)
	require.Len(t, late, 1)
	assert.Contains(t, late[0], "systemctl enable app.service")
	assert.Contains(t, late[0], "systemctl restart app.service")

	undo := l.Actions(ledger.Prerm, ledger.Late)
	require.Len(t, undo, 1)
	assert.Contains(t, undo[0], "systemctl disable app.service")

	assert.Empty(t, l.Actions(ledger.Postinst, ledger.Early))

	plan := env.Plan(ledger.Tiered)
	body := plan.Body(ledger.Postinst)
	require.Len(t, body, 2)
	assert.Equal(t, DaemonReload, body[0])
}

func TestUnits_IgnoresOtherDirectories(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "app")
	m := env.Attach(NewUnits)

	require.NoError(t, env.Env.Stager.Text("/etc/systemd/system/app.service", "[Install]\n", false))
	require.NoError(t, env.Env.Stager.Text(UnitDir+"/sub/app.service", "[Install]\n", false))
	assert.True(t, m.Ledger().Empty())
}

func TestDirectives(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "app")
	m := env.Attach(New)

	require.NoError(t, env.Route(router.KindDebian, "/DEBIAN.yml", "reload: [nginx.service]\nservices: [redis-server.service]\n"))

	l := m.Ledger()
	assert.Equal(t, []ledger.Trigger{{Script: "systemctl try-reload-or-restart nginx.service"}}, l.Triggers())
	late := l.Actions(ledger.Postinst, ledger.Late)
	require.Len(t, late, 1)
	assert.Contains(t, late[0], "redis-server.service")
}

func TestUnitText(t *testing.T) {
	timer := DailyTimer(`update of "app"`)
	assert.Contains(t, timer, "OnCalendar=daily\n")
	assert.Contains(t, timer, "[Install]\nWantedBy=timers.target\n")

	service := OneshotService("x", "User=app", "ExecStart=/bin/true")
	assert.Equal(t, "[Unit]\nDescription=x\n[Service]\nType=oneshot\nUser=app\nExecStart=/bin/true\n", service)
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{"plain words", []string{"/usr/bin/pip3", "install", "requests==2.0"}, "/usr/bin/pip3 install requests==2.0"},
		{"space", []string{"/bin/echo", "two words"}, `/bin/echo "two words"`},
		{"specifier and variable", []string{"/bin/echo", "100%", "$HOME"}, "/bin/echo 100%% $$HOME"},
		{"quotes and backslash", []string{"/bin/echo", `say "hi"\now`}, `/bin/echo "say \"hi\"\\now"`},
		{"control characters", []string{"/bin/echo", "a\nb\tc"}, `/bin/echo "a\x0ab\x09c"`},
		{"utf-8 kept", []string{"/bin/echo", "café"}, `/bin/echo "café"`},
		{"empty word", []string{"/bin/echo", ""}, `/bin/echo ""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Command(tt.argv...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandRejectsNUL(t *testing.T) {
	_, err := Command("/bin/echo", "a\x00b")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestDescriptionSpecifiersEscaped(t *testing.T) {
	service := OneshotService("update of 100%")
	assert.Contains(t, service, "Description=update of 100%%\n")
	assert.Contains(t, DailyTimer("50% done"), "Description=50%% done\n")
}
