package policy

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/veridoc/pkg/types"
)

// fileTables is the YAML layout of a policy file. Sections that are omitted
// fall back to the built-in defaults, so a file can override just the access
// table or just the masking policy.
type fileTables struct {
	Patterns []filePattern `yaml:"patterns"`

	SensitiveTerms []string `yaml:"sensitive_terms"`

	// Masking maps canonical role -> labels masked for that role.
	Masking map[string][]string `yaml:"masking"`

	// Access maps canonical role -> permitted domains.
	Access map[string][]string `yaml:"access"`

	// RoleMapping maps department -> department role -> canonical role.
	RoleMapping map[string]map[string]string `yaml:"role_mapping"`

	// Compliance maps framework -> permitted domains.
	Compliance map[string][]string `yaml:"compliance"`
}

type filePattern struct {
	Label string `yaml:"label"`
	Regex string `yaml:"regex"`
	Mask  string `yaml:"mask"`
}

// LoadFile reads policy tables from a YAML file. Missing sections keep the
// built-in defaults; present sections replace them wholesale.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var ft fileTables
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	patterns := defaultPatterns()
	if len(ft.Patterns) > 0 {
		patterns = make([]SensitivePattern, 0, len(ft.Patterns))
		for _, fp := range ft.Patterns {
			matcher, err := regexp.Compile(fp.Regex)
			if err != nil {
				return nil, fmt.Errorf("pattern %s: invalid regex: %w", fp.Label, err)
			}
			patterns = append(patterns, SensitivePattern{
				Label:        fp.Label,
				Matcher:      matcher,
				MaskTemplate: fp.Mask,
			})
		}
	}

	terms := defaultSensitiveTerms()
	if len(ft.SensitiveTerms) > 0 {
		terms = ft.SensitiveTerms
	}

	masking := defaultMasking()
	if len(ft.Masking) > 0 {
		masking = make(map[types.CanonicalRole][]string, len(ft.Masking))
		for role, labels := range ft.Masking {
			masking[types.CanonicalRole(role)] = labels
		}
	}

	access := defaultAccessRules()
	if len(ft.Access) > 0 {
		access = make(map[types.CanonicalRole][]types.Domain, len(ft.Access))
		for role, domains := range ft.Access {
			ds := make([]types.Domain, 0, len(domains))
			for _, d := range domains {
				ds = append(ds, types.Domain(d))
			}
			access[types.CanonicalRole(role)] = ds
		}
	}

	roleMapping := defaultRoleMapping()
	if len(ft.RoleMapping) > 0 {
		roleMapping = make(map[string]map[string]types.CanonicalRole, len(ft.RoleMapping))
		for dept, roles := range ft.RoleMapping {
			m := make(map[string]types.CanonicalRole, len(roles))
			for deptRole, canonical := range roles {
				m[deptRole] = types.CanonicalRole(canonical)
			}
			roleMapping[dept] = m
		}
	}

	compliance := defaultCompliance()
	if len(ft.Compliance) > 0 {
		compliance = make(map[Framework][]types.Domain, len(ft.Compliance))
		for fw, domains := range ft.Compliance {
			ds := make([]types.Domain, 0, len(domains))
			for _, d := range domains {
				ds = append(ds, types.Domain(d))
			}
			compliance[Framework(fw)] = ds
		}
	}

	return NewTables(patterns, terms, masking, access, roleMapping, compliance)
}
