// Package cookierepo persists token slots as cookies in an http.CookieJar,
// scoped to the API base URL. Cookie names are the storage keys with the
// configured prefix; values are query-escaped.
package cookierepo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-ordercloud/config"
	"github.com/jrsteele09/go-ordercloud/token"
	"github.com/pkg/errors"
)

var _ token.Repo = (*CookieRepo)(nil)

type CookieRepo struct {
	jar     http.CookieJar
	url     *url.URL
	options config.CookieOptions
}

// New returns a repo writing to jar for the given base URL.
func New(jar http.CookieJar, baseURL string, options config.CookieOptions) (*CookieRepo, error) {
	if jar == nil {
		return nil, errors.New("[cookierepo.New] cookie jar is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[cookierepo.New] invalid base URL")
	}
	lookup := *u
	lookup.Path = options.Path
	if lookup.Path == "" {
		lookup.Path = "/"
	}
	lookup.RawQuery = ""
	lookup.Fragment = ""

	return &CookieRepo{
		jar:     jar,
		url:     &lookup,
		options: options,
	}, nil
}

func (r *CookieRepo) name(key string) string {
	return r.options.Prefix + key
}

func (r *CookieRepo) Get(_ context.Context, key string) (string, error) {
	name := r.name(key)
	for _, c := range r.jar.Cookies(r.url) {
		if c.Name != name {
			continue
		}
		value, err := url.QueryUnescape(c.Value)
		if err != nil {
			return "", errors.Wrapf(err, "CookieRepo.Get %s", name)
		}
		return value, nil
	}
	return "", nil
}

func (r *CookieRepo) Upsert(_ context.Context, key, value string) error {
	c := r.cookie(key)
	c.Value = url.QueryEscape(value)
	c.MaxAge = r.options.MaxAge
	r.jar.SetCookies(r.url, []*http.Cookie{c})
	return nil
}

func (r *CookieRepo) Delete(_ context.Context, key string) error {
	c := r.cookie(key)
	c.MaxAge = -1
	r.jar.SetCookies(r.url, []*http.Cookie{c})
	return nil
}

func (r *CookieRepo) cookie(key string) *http.Cookie {
	return &http.Cookie{
		Name:     r.name(key),
		Path:     r.url.Path,
		Domain:   r.options.Domain,
		Secure:   r.options.Secure,
		SameSite: r.options.SameSite,
	}
}
