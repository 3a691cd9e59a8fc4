package rules

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/pkg/errors"
)

// ruleFile is the on-disk shape of a rule snapshot.
type ruleFile struct {
	Rules []compliance.ComplianceRule `yaml:"rules"`
}

// LoadFromFile reads a yaml rule snapshot, typically published into a
// repository at startup.
func LoadFromFile(path string) ([]compliance.ComplianceRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Newf(errors.KindConfigurationMissing, "reading rules file %s", path).Cause(err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Newf(errors.KindValidation, "parsing rules file %s", path).Cause(err)
	}
	return file.Rules, nil
}
