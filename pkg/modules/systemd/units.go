// Package systemd manages the systemd units a package ships.
//
// Two modules live here. The units module watches staged files under
// UnitDir: any unit change schedules a daemon-reload and units with an
// [Install] section are enabled and (re)started after install. The
// directives module handles the reload and services keys of DEBIAN.yml.
//
// The unit text helpers are shared by the modules that generate their own
// timers and services.
package systemd

import (
	"fmt"
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// UnitDir is where packaged units are installed
const UnitDir = "/lib/systemd/system"

// DaemonReload is the internal trigger run whenever a unit file changes
const DaemonReload = "systemctl daemon-reload"

// DailyTimer returns a timer unit firing once a day with up to an hour of
// random delay
func DailyTimer(description string) string {
	return unitText(
		"[Unit]",
		"Description="+EscapeSpecifiers(description),
		"[Timer]",
		"OnCalendar=daily",
		"Persistent=true",
		"RandomizedDelaySec=1h",
		"[Install]",
		"WantedBy=timers.target",
	)
}

// OneshotService returns a oneshot service unit; settings are appended to
// the [Service] section in order
func OneshotService(description string, settings ...string) string {
	lines := []string{
		"[Unit]",
		"Description=" + EscapeSpecifiers(description),
		"[Service]",
		"Type=oneshot",
	}
	return unitText(append(lines, settings...)...)
}

// StageTimer stages <name>.timer and <name>.service under UnitDir
func StageTimer(stager *module.Stager, name, timer, service string) error {
	if err := stager.Text(UnitDir+"/"+name+".timer", timer, false); err != nil {
		return err
	}
	return stager.Text(UnitDir+"/"+name+".service", service, false)
}

// Manage enables and restarts unit after install, and stops and disables
// it before removal. Units refusing manual start or stop are respected.
func Manage(l *ledger.Ledger, unit string) error {
	u := shell.Quote(unit)

	install := fmt.Sprintf(`systemctl enable %[1]s
if ! systemctl cat %[1]s | grep -xq 'RefuseManualStart=true'; then
    if ! systemctl cat %[1]s | grep -xq 'RefuseManualStop=true'; then
        systemctl restart %[1]s
    else
        systemctl start %[1]s
    fi
fi`, u)
	undo := fmt.Sprintf(`if ! systemctl cat %[1]s | grep -xq 'RefuseManualStop=true'; then
    systemctl stop %[1]s
fi
if systemctl is-failed %[1]s > /dev/null; then
    systemctl reset-failed %[1]s
fi
systemctl disable %[1]s`, u)

	return l.AddAction(install, undo, ledger.After, ledger.Late)
}

// Reload schedules an external trigger reloading unit
func Reload(l *ledger.Ledger, unit string) {
	l.AddTrigger("systemctl try-reload-or-restart "+shell.Quote(unit), false)
}

// Command renders argv as a systemd command line for ExecStart= and
// friends. Specifiers and variable references are escaped, words other than
// plain ones are double quoted with C escapes. NUL cannot be expressed.
func Command(argv ...string) (string, error) {
	words := make([]string, len(argv))
	for i, arg := range argv {
		if strings.ContainsRune(arg, 0) {
			return "", errors.Newf(errors.ErrInvalidInput, "command argument %q contains NUL", arg).
				WithDetail("argument", arg)
		}
		words[i] = commandWord(arg)
	}
	return strings.Join(words, " "), nil
}

// EscapeSpecifiers doubles every % so systemd keeps s literally
func EscapeSpecifiers(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

func commandWord(arg string) string {
	arg = strings.ReplaceAll(EscapeSpecifiers(arg), "$", "$$")
	if arg != "" && strings.IndexFunc(arg, notPlain) < 0 {
		return arg
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, b := range []byte(arg) {
		switch {
		case b == '\\' || b == '"':
			sb.WriteByte('\\')
			sb.WriteByte(b)
		case b < 0x20 || b == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, b)
		default:
			sb.WriteByte(b)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func notPlain(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./=@:+,%$", r)
}

func unitText(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
