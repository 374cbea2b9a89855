package naming

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Naming functions for provisioned resources.
// Resources created per run carry a short random suffix so that re-running
// provisioning against the same project never collides with a previous run.

const (
	ProjectPrefix        = "AzurePipelines"
	maxProjectNameLength = 64
	maxAppNameLength     = 92
)

var (
	orgDisallowed = regexp.MustCompile(`[^a-zA-Z0-9-]`)
	appDisallowed = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	onlyUnders    = regexp.MustCompile(`^_+$`)
)

// newUUID is swapped in tests for deterministic suffixes.
var newUUID = uuid.New

// Suffix returns n lowercase hex characters taken from a fresh UUID.
func Suffix(n int) string {
	s := strings.ReplaceAll(newUUID().String(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

func ServiceConnection(prefix string) string {
	prefix = strings.ReplaceAll(strings.TrimSpace(prefix), "/", "-")
	return fmt.Sprintf("%s-%s", prefix, Suffix(5))
}

func PipelineDefinition(targetResource string) string {
	return fmt.Sprintf("%s.%s", targetResource, Suffix(4))
}

// Organization builds "{userLocalPart}-{repoSuffix}-{NN}" restricted to the
// characters an organization name may contain.
func Organization(user, repositoryName string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(user), "@")
	name := fmt.Sprintf("%s-%s-%d", local, lastSegment(repositoryName), twoDigits())
	name = orgDisallowed.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.TrimLeft(name, "-")
}

// Project builds "AzurePipelines-{repoSuffix}", capped at 64 characters.
func Project(repositoryName string) string {
	if strings.TrimSpace(repositoryName) == "" {
		return ProjectPrefix
	}
	suffix := trailingDots.ReplaceAllString(lastSegment(repositoryName), "")
	suffix = onlyUnders.ReplaceAllString(suffix, "")

	name := ProjectPrefix + "-" + suffix
	if len(name) > maxProjectNameLength {
		name = name[:maxProjectNameLength]
	}
	return name
}

// Application names the directory application backing a cloud connection:
// "{org}-{project}-{uuid}", at most 92 characters. The UUID is never cut;
// organization and project share the remaining budget.
func Application(organization, project string) string {
	id := newUUID().String()
	organization = appDisallowed.ReplaceAllString(organization, "")
	project = appDisallowed.ReplaceAllString(project, "")

	budget := maxAppNameLength - len(id) - 2
	half := budget / 2
	switch {
	case len(organization)+len(project) <= budget:
	case len(organization) > half && len(project) > half:
		organization = organization[:half]
		project = project[:budget-half]
	case len(organization) > half:
		organization = organization[:budget-len(project)]
	default:
		project = project[:budget-len(organization)]
	}
	return organization + "-" + project + "-" + id
}

const (
	lower   = "abcdefghijklmnopqrstuvwxyz"
	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "1234567890"
	symbols = "!@#%^*()-+"
)

// Password returns a secret of the given length cycling through lower case,
// upper case, digit and symbol characters.
func Password(length int) (string, error) {
	classes := []string{lower, upper, digits, symbols}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		class := classes[i%len(classes)]
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(class))))
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		b.WriteByte(class[n.Int64()])
	}
	return b.String(), nil
}

func lastSegment(repositoryName string) string {
	parts := strings.Split(strings.TrimSpace(repositoryName), "/")
	return strings.TrimSpace(parts[len(parts)-1])
}

func twoDigits() int {
	u := newUUID()
	return 10 + int(u[0])%90
}
