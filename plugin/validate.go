package plugin

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	semverRegex     = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)
	constraintRegex = regexp.MustCompile(`^~>\s*(\d+)\.(\d+)$`)
	identifierRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

// ValidationResult reports conformance as data rather than an error so
// callers can decide policy.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate checks a plugin's structural and metadata conformance: required
// metadata fields must be non-empty and well-formed, optional fields must
// have the expected shape when present. Absent optional fields are never an
// error. Validate never fails; it always returns a result.
func Validate(p Plugin) ValidationResult {
	var errs []string

	if p == nil {
		return ValidationResult{Errors: []string{"plugin is nil"}}
	}

	meta := p.Metadata()

	if meta.Name == "" {
		errs = append(errs, "metadata: name is required")
	}
	if meta.Version == "" {
		errs = append(errs, "metadata: version is required")
	} else if !semverRegex.MatchString(meta.Version) {
		errs = append(errs, fmt.Sprintf("metadata: version %q is not a semantic version", meta.Version))
	}
	if meta.Author == "" {
		errs = append(errs, "metadata: author is required")
	}
	if meta.Description == "" {
		errs = append(errs, "metadata: description is required")
	}
	if meta.HostConstraint == "" {
		errs = append(errs, "metadata: host constraint is required")
	} else if !constraintRegex.MatchString(meta.HostConstraint) {
		errs = append(errs, fmt.Sprintf("metadata: host constraint %q is not of the form ~> MAJOR.MINOR", meta.HostConstraint))
	}

	for _, name := range meta.Algorithms {
		if !identifierRegex.MatchString(name) {
			errs = append(errs, fmt.Sprintf("metadata: algorithm name %q is not an identifier", name))
		}
	}
	for _, dep := range meta.Dependencies {
		if strings.TrimSpace(dep) == "" {
			errs = append(errs, "metadata: dependencies must not contain empty entries")
		}
	}
	for _, tag := range meta.Tags {
		if strings.TrimSpace(tag) == "" {
			errs = append(errs, "metadata: tags must not contain empty entries")
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// CheckConstraint matches a plugin's declared host version range against the
// running host version. The constraint "~> MAJOR.MINOR" accepts any version
// in the half-open range [MAJOR.MINOR.0, MAJOR.(MINOR+1).0). The returned
// list is empty when the versions are compatible. The check is pure.
func CheckConstraint(constraint, hostVersion string) []string {
	var errs []string

	cm := constraintRegex.FindStringSubmatch(strings.TrimSpace(constraint))
	if cm == nil {
		return []string{fmt.Sprintf("unsupported constraint %q: expected ~> MAJOR.MINOR", constraint)}
	}
	major, _ := strconv.Atoi(cm[1])
	minor, _ := strconv.Atoi(cm[2])

	hm := semverRegex.FindStringSubmatch(strings.TrimSpace(hostVersion))
	if hm == nil {
		return []string{fmt.Sprintf("host version %q is not a semantic version", hostVersion)}
	}
	hostMajor, _ := strconv.Atoi(hm[1])
	hostMinor, _ := strconv.Atoi(hm[2])

	if hostMajor != major || hostMinor != minor {
		errs = append(errs, fmt.Sprintf(
			"plugin requires host ~> %d.%d (>= %d.%d.0, < %d.%d.0), host is %s",
			major, minor, major, minor, major, minor+1, hostVersion,
		))
	}

	return errs
}
