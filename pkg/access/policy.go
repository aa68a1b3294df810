package access

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// policyDocument is the on-disk shape of a permission policy file:
//
//	permissions:
//	  - name: moderate
//	    grants: [edit, delete]
//	  - name: publish
type policyDocument struct {
	Permissions []policyEntry `yaml:"permissions"`
}

type policyEntry struct {
	Name   string   `yaml:"name"`
	Grants []string `yaml:"grants"`
}

// LoadPolicy registers the permissions declared in a YAML policy document.
// Entries are processed in order, so a permission's grants must be declared
// (or built in) before the permissions that reference them.
func LoadPolicy(r io.Reader, reg *Registry) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Join(ErrInvalidPolicy, err)
	}

	var doc policyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Join(ErrInvalidPolicy, err)
	}

	for _, entry := range doc.Permissions {
		if entry.Name == "" {
			return fmt.Errorf("%w: permission entry without a name", ErrInvalidPolicy)
		}
		grants := make([]Permission, len(entry.Grants))
		for i, g := range entry.Grants {
			grants[i] = Permission(g)
		}
		if err := reg.Register(Permission(entry.Name), grants...); err != nil {
			return err
		}
	}

	return nil
}
