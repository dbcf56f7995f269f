package aptsources

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const armored = "-----BEGIN PGP PUBLIC KEY BLOCK-----\nabc\n-----END PGP PUBLIC KEY BLOCK-----"

func keyServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/key.asc":
			_, _ = w.Write([]byte(armored + "\n"))
		case r.URL.Path == "/pks/lookup" && r.URL.Query().Get("search") == "0xDEADBEEF":
			_, _ = w.Write([]byte("hkp " + armored))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAptSources_Lists(t *testing.T) {
	env := testutil.NewTestEnvironment(t, "repo")
	env.Attach(New)

	doc := "sources:\n  nodesource:\n    - deb https://deb.nodesource.com/node_20.x nodistro main\n    - deb-src https://deb.nodesource.com/node_20.x nodistro main\n"
	require.NoError(t, env.Route(router.KindDebian, "/DEBIAN.yml", doc))

	assert.Equal(t, "deb https://deb.nodesource.com/node_20.x nodistro main\ndeb-src https://deb.nodesource.com/node_20.x nodistro main\n",
		env.Staged("/etc/apt/sources.list.d/nodesource.list"))
	assert.False(t, env.IsStaged("/etc/apt/trusted.gpg.d/nodesource.asc"))
}

func TestAptSources_Keys(t *testing.T) {
	srv := keyServer(t)
	env := testutil.NewTestEnvironment(t, "repo")
	env.Env.HTTP = srv.Client()
	env.Attach(New)

	hkp := "hkp://" + strings.TrimPrefix(srv.URL, "http://") + "/0xDEADBEEF"
	doc := "sources:\n  vendor:\n" +
		"    - deb https://vendor.example/apt stable main\n" +
		"    - " + srv.URL + "/key.asc\n" +
		"    - " + hkp + "\n" +
		"    - |\n      inline key\n"
	require.NoError(t, env.Route(router.KindDebian, "/DEBIAN.yml", doc))

	assert.Equal(t, armored+"\nhkp "+armored+"\ninline key\n", env.Staged("/etc/apt/trusted.gpg.d/vendor.asc"))
	assert.Equal(t, fs.FileMode(0644), env.StagedMode("/etc/apt/trusted.gpg.d/vendor.asc"))
	assert.Equal(t, []string{"/etc/apt/sources.list.d/vendor.list", "/etc/apt/trusted.gpg.d/vendor.asc"}, env.Written())
}

func TestAptSources_FetchFailure(t *testing.T) {
	srv := keyServer(t)
	env := testutil.NewTestEnvironment(t, "repo")
	env.Env.HTTP = srv.Client()
	env.Attach(New)

	err := env.Route(router.KindDebian, "/DEBIAN.yml", "sources:\n  vendor:\n    - "+srv.URL+"/missing.asc\n")
	require.Error(t, err)
	assert.True(t, errors.HasErrorCode(err, errors.ErrFetchFailed))
	assert.False(t, env.IsStaged("/etc/apt/trusted.gpg.d/vendor.asc"))
}

func TestLookupURL(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"hkp://keyserver.ubuntu.com/0xABCD", "http://keyserver.ubuntu.com:11371/pks/lookup?op=get&options=mr&search=0xABCD"},
		{"hkp://keys.example:80/ABCD", "http://keys.example:80/pks/lookup?op=get&options=mr&search=0xABCD"},
		{"hkps://keys.openpgp.org/0xABCD", "https://keys.openpgp.org/pks/lookup?op=get&options=mr&search=0xABCD"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := LookupURL(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := LookupURL("hkp://keyserver.ubuntu.com")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}
