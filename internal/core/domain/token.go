// Package domain defines the core domain model for token naming.
package domain

import (
	"strings"

	"golang.org/x/net/idna"

	"github.com/yndnr/artifact-go/pkg/numeral"
)

// TokenRecord is a persisted token: the canonical name and its flags.
// The name is the store's primary key.
type TokenRecord struct {
	Name  string `json:"token" yaml:"token"`
	Flags Flags  `json:"flags" yaml:"flags"`
}

// Registration is the outcome of a successful registration.
type Registration struct {
	ID      uint64 `json:"id" yaml:"id"`
	Name    string `json:"token" yaml:"token"`
	Flags   Flags  `json:"flags" yaml:"flags"`
	Created bool   `json:"created" yaml:"created"`
}

// DisplayName renders IDN labels ("XN--CQV902D") in their Unicode form.
// Labels that do not decode are returned unchanged.
func DisplayName(name string) string {
	labels := strings.Split(name, string(numeral.Separator))
	changed := false
	for i, label := range labels {
		if !strings.HasPrefix(label, DefaultIDNPrefix) {
			continue
		}
		u, err := idna.Punycode.ToUnicode(strings.ToLower(label))
		if err != nil {
			continue
		}
		labels[i] = u
		changed = true
	}
	if !changed {
		return name
	}
	return strings.Join(labels, string(numeral.Separator))
}
