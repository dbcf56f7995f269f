// Package gitrepo maintains git checkouts described by .git.yml documents.
//
// A .git.yml placed at /srv/app/.git.yml makes /srv/app a managed
// repository: it is cloned before install, pulled daily by a timer and
// removed with the package. pre and post are hook scripts run around every
// pull.
package gitrepo

import (
	"fmt"
	"path"

	"github.com/gosimple/slug"
	"github.com/scramjet-deb/scramjet/pkg/control"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/modules/systemd"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Name is the registry name of the module
const Name = "gitrepo"

const (
	defaultBranch = "main"
	defaultUser   = "root"
	updateTool    = "/usr/sbin/update-managed-repo"
)

// Repo is the content of a .git.yml document
type Repo struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
	User   string `yaml:"user"`
	Pre    string `yaml:"pre"`
	Post   string `yaml:"post"`
}

// Module handles .git.yml documents
type Module struct {
	module.Base
	stager *module.Stager
}

// New creates the module for one build
func New(env *module.Env) module.Module {
	return &Module{Base: module.NewBase(Name), stager: env.Stager}
}

func (m *Module) ConfigHandlers() []router.Handler {
	return []router.Handler{{
		Document: router.KindGit,
		Keys:     []string{"url", "branch", "user", "pre", "post"},
		Handle:   m.parse,
	}}
}

// Decode reads a repository description from fields and applies defaults
func Decode(docPath string, fields router.Fields) (Repo, error) {
	var repo Repo
	for key, target := range map[string]*string{
		"url":    &repo.URL,
		"branch": &repo.Branch,
		"user":   &repo.User,
		"pre":    &repo.Pre,
		"post":   &repo.Post,
	} {
		if err := fields.Decode(key, target); err != nil {
			return repo, err
		}
	}

	if repo.URL == "" {
		return repo, errors.Newf(errors.ErrConfigValid, "%s: url is required", docPath).
			WithDetail("path", docPath).
			WithDetail("key", "url")
	}
	if repo.Branch == "" {
		repo.Branch = defaultBranch
	}
	if repo.User == "" {
		repo.User = defaultUser
	}
	return repo, nil
}

func (m *Module) parse(docPath string, fields router.Fields) error {
	repo, err := Decode(docPath, fields)
	if err != nil {
		return err
	}

	dir := path.Dir(docPath)
	name := slug.Make(dir)
	m.Control().Add(control.PreDepends, "git")

	hooks := path.Join(dir, ".git", "hooks")
	if repo.Pre != "" {
		if err := m.stager.Text(hooks+"/pre-pull", repo.Pre, true); err != nil {
			return err
		}
	}
	if repo.Post != "" {
		if err := m.stager.Text(hooks+"/post-pull", repo.Post, true); err != nil {
			return err
		}
	}

	d := shell.Quote(dir)
	u := shell.Quote(repo.User)
	clone := fmt.Sprintf(`mkdir -p %[1]s
chown %[2]s %[1]s
cd %[1]s
sudo -u %[3]s git init
sudo -u %[3]s git remote add origin %[4]s
sudo -u %[3]s git fetch
sudo -u %[3]s git checkout %[5]s
sudo -u %[3]s git submodule update --init --recursive`,
		d, shell.Quote(repo.User+":"+repo.User), u, shell.Quote(repo.URL), shell.Quote(repo.Branch))

	// Late so that users and folders created by other modules exist first.
	if err := m.Ledger().AddAction(clone, "remove-managed-repo "+d, ledger.Before, ledger.Late); err != nil {
		return err
	}
	m.Ledger().AddPurge("rm -r " + d)

	description := fmt.Sprintf("pulling and processing git repo at %q", dir)
	service := systemd.OneshotService(description,
		"User="+systemd.EscapeSpecifiers(repo.User),
		"WorkingDirectory="+systemd.EscapeSpecifiers(dir),
		"ExecStart="+updateTool,
	)
	if err := systemd.StageTimer(m.stager, name, systemd.DailyTimer(description), service); err != nil {
		return err
	}

	return m.Ledger().AddAction("systemctl start "+shell.Quote(name+".service"), "", ledger.After, ledger.Early)
}
