// Package formats enumerates the string formats the validation engine can
// assert. Each supported name maps to a predicate over a string value; names
// that are not listed are unsupported and fail closed.
package formats

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/asaskevich/govalidator"
)

// ErrUnsupported is returned by Check for format names the registry does not know.
var ErrUnsupported = errors.New("unsupported format")

// Checker validates a string against one format.
type Checker func(s string) error

// Registry maps format names to checkers. It is read-only once built.
type Registry struct {
	checkers map[string]Checker
}

// Default returns the registry of every supported format.
func Default() *Registry {
	return &Registry{checkers: map[string]Checker{
		"date":          checkDate,
		"date-time":     checkDateTime,
		"time":          checkTime,
		"email":         checkEmail,
		"idn-email":     checkEmail,
		"hostname":      checkHostname,
		"ipv4":          checkIPv4,
		"ipv6":          checkIPv6,
		"uri":           checkURI,
		"iri":           checkURI,
		"uri-reference": checkURIReference,
		"iri-reference": checkURIReference,
		"uuid":          checkUUID,
		"json-pointer":  checkJSONPointer,
		"regex":         checkRegex,
		"semver":        checkSemver,
		"spdx":          checkSPDX,
	}}
}

// With returns a copy of r that also checks name with c, replacing any
// checker already registered under that name.
func (r *Registry) With(name string, c Checker) *Registry {
	checkers := make(map[string]Checker, len(r.checkers)+1)
	for n, existing := range r.checkers {
		checkers[n] = existing
	}
	checkers[name] = c
	return &Registry{checkers: checkers}
}

// Lookup returns the checker registered for name.
func (r *Registry) Lookup(name string) (Checker, bool) {
	c, ok := r.checkers[name]
	return c, ok
}

// Names returns the supported format names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.checkers))
	for n := range r.checkers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Check validates s against the named format.
func (r *Registry) Check(name, s string) error {
	c, ok := r.checkers[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnsupported, name)
	}
	return c(s)
}

func checkDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("not a full-date (YYYY-MM-DD)")
	}
	return nil
}

func checkDateTime(s string) error {
	if !isRFC3339(s) {
		return fmt.Errorf("not an RFC 3339 date-time")
	}
	return nil
}

func checkTime(s string) error {
	// Parse against a fixed date so offsets and fractions are handled by RFC 3339 rules.
	if !isRFC3339("1970-01-01T" + s) {
		return fmt.Errorf("not an RFC 3339 full-time")
	}
	return nil
}

// isRFC3339 reports whether s is an RFC 3339 date-time. time.Parse has no
// leap seconds, so a ":60" second is parsed as ":59" and must land on
// 23:59 UTC.
func isRFC3339(s string) bool {
	s = strings.ToUpper(s)
	leap := false
	if i := strings.IndexByte(s, 'T'); i >= 0 && len(s) >= i+9 && s[i+7:i+9] == "60" {
		s = s[:i+7] + "59" + s[i+9:]
		leap = true
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return false
	}
	if leap {
		u := t.UTC()
		return u.Hour() == 23 && u.Minute() == 59
	}
	return true
}

func checkEmail(s string) error {
	if !govalidator.IsEmail(s) {
		return fmt.Errorf("not an email address")
	}
	return nil
}

func checkHostname(s string) error {
	if !govalidator.IsDNSName(s) {
		return fmt.Errorf("not a valid hostname")
	}
	return nil
}

func checkIPv4(s string) error {
	if !govalidator.IsIPv4(s) {
		return fmt.Errorf("not an IPv4 address")
	}
	return nil
}

func checkIPv6(s string) error {
	if !govalidator.IsIPv6(s) {
		return fmt.Errorf("not an IPv6 address")
	}
	return nil
}

func checkURI(s string) error {
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("not an absolute URI")
	}
	return nil
}

func checkURIReference(s string) error {
	if _, err := url.Parse(s); err != nil {
		return fmt.Errorf("not a URI reference")
	}
	return nil
}

func checkUUID(s string) error {
	if !govalidator.IsUUID(s) {
		return fmt.Errorf("not a UUID")
	}
	return nil
}

func checkJSONPointer(s string) error {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "/") {
		return fmt.Errorf("not a JSON pointer: must start with '/'")
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '~' {
			continue
		}
		if i+1 >= len(s) || (s[i+1] != '0' && s[i+1] != '1') {
			return fmt.Errorf("not a JSON pointer: '~' must be followed by '0' or '1'")
		}
	}
	return nil
}

func checkRegex(s string) error {
	if _, err := regexp.Compile(s); err != nil {
		return fmt.Errorf("not a valid regular expression")
	}
	return nil
}

func checkSemver(s string) error {
	if _, err := semver.StrictNewVersion(s); err != nil {
		return fmt.Errorf("not a semantic version")
	}
	return nil
}
