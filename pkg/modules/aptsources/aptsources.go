// Package aptsources adds APT repositories and their signing keys.
//
// Every entry of the sources key maps a name to a list of values. Values
// starting with "deb " or "deb-src " are repository lines, written to
// /etc/apt/sources.list.d/<name>.list. Everything else is key material:
//
//   - http:// and https:// URLs are downloaded
//   - hkp://server/KEYID and hkps://server/KEYID are fetched from the
//     keyserver's HKP lookup endpoint
//   - anything else is an inline ASCII-armored key
//
// All keys of a name are concatenated into /etc/apt/trusted.gpg.d/<name>.asc.
package aptsources

import (
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
)

// Name is the registry name of the module
const Name = "aptsources"

const (
	listDir    = "/etc/apt/sources.list.d"
	keyringDir = "/etc/apt/trusted.gpg.d"

	// hkpPort is the registered port of plain HKP
	hkpPort = "11371"
	// maxKeySize bounds a downloaded key
	maxKeySize = 1 << 20
)

// Module handles the sources key
type Module struct {
	module.Base
	stager *module.Stager
	client *http.Client
	log    zerolog.Logger
}

// New creates the module for one build
func New(env *module.Env) module.Module {
	client := env.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	return &Module{
		Base:   module.NewBase(Name),
		stager: env.Stager,
		client: client,
		log:    env.Log.With().Str("module", Name).Logger(),
	}
}

func (m *Module) ConfigHandlers() []router.Handler {
	return []router.Handler{{
		Document: router.KindDebian,
		Keys:     []string{"sources"},
		Handle:   m.parse,
	}}
}

func (m *Module) parse(_ string, fields router.Fields) error {
	var sources map[string][]string
	if err := fields.Decode("sources", &sources); err != nil {
		return err
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := m.source(name, sources[name]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) source(name string, values []string) error {
	var repos, keys []string
	for _, v := range values {
		if strings.HasPrefix(v, "deb ") || strings.HasPrefix(v, "deb-src ") {
			repos = append(repos, v)
		} else {
			keys = append(keys, v)
		}
	}

	if len(repos) > 0 {
		list := strings.Join(repos, "\n") + "\n"
		if err := m.stager.Text(listDir+"/"+name+".list", list, false); err != nil {
			return err
		}
	}

	if len(keys) == 0 {
		return nil
	}

	var keyring strings.Builder
	for _, key := range keys {
		material, err := m.resolve(key)
		if err != nil {
			return err
		}
		keyring.WriteString(strings.TrimRight(material, "\n") + "\n")
	}
	return m.stager.Text(keyringDir+"/"+name+".asc", keyring.String(), false)
}

// resolve returns the armored key a value refers to
func (m *Module) resolve(key string) (string, error) {
	switch {
	case strings.HasPrefix(key, "http://"), strings.HasPrefix(key, "https://"):
		return m.fetch(key)
	case strings.HasPrefix(key, "hkp://"), strings.HasPrefix(key, "hkps://"):
		lookup, err := LookupURL(key)
		if err != nil {
			return "", err
		}
		return m.fetch(lookup)
	default:
		return key, nil
	}
}

// LookupURL converts hkp://server/KEYID into the server's HKP lookup URL
func LookupURL(key string) (string, error) {
	idx := strings.LastIndex(key, "/")
	server, kid := key[:idx], key[idx+1:]

	u, err := url.Parse(server)
	if err != nil || u.Host == "" || kid == "" {
		return "", errors.Newf(errors.ErrConfigValid, "invalid keyserver reference %q", key).
			WithDetail("key", key)
	}

	host := u.Host
	switch u.Scheme {
	case "hkp":
		u.Scheme = "http"
		if u.Port() == "" {
			host = net.JoinHostPort(u.Hostname(), hkpPort)
		}
	case "hkps":
		u.Scheme = "https"
	}

	kid = strings.TrimPrefix(strings.TrimPrefix(kid, "0x"), "0X")
	query := url.Values{
		"op":      {"get"},
		"options": {"mr"},
		"search":  {"0x" + kid},
	}
	lookup := url.URL{Scheme: u.Scheme, Host: host, Path: "/pks/lookup", RawQuery: query.Encode()}
	return lookup.String(), nil
}

func (m *Module) fetch(rawURL string) (string, error) {
	m.log.Debug().Str("url", rawURL).Msg("Fetching key")

	resp, err := m.client.Get(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFetchFailed, "cannot fetch key %s", rawURL).
			WithDetail("url", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrFetchFailed, "fetching key %s: %s", rawURL, resp.Status).
			WithDetail("url", rawURL).
			WithDetail("status", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySize))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFetchFailed, "cannot read key %s", rawURL).
			WithDetail("url", rawURL)
	}
	if len(data) == 0 {
		return "", errors.Newf(errors.ErrFetchFailed, "key %s is empty", rawURL).
			WithDetail("url", rawURL)
	}
	return string(data), nil
}

