package organization

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-logr/logr"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/devops"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]$|^[a-zA-Z]$`)

// reservedNames cannot be registered as organization names.
var reservedNames = map[string]bool{
	"aux": true, "con": true, "nul": true, "prn": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
	"app": true, "api": true, "admin": true, "azure": true, "dev": true,
	"devops": true, "docs": true, "login": true, "microsoft": true,
	"signin": true, "signup": true, "status": true, "support": true,
	"visualstudio": true, "vsts": true, "www": true,
}

func invalidName(name, reason string) error {
	return &domain.ValidationError{Field: "organization name", Value: name, Reason: reason}
}

// ValidateName checks an organization name without any remote call.
func ValidateName(name string) error {
	switch {
	case name == "":
		return invalidName(name, "must not be empty")
	case strings.TrimSpace(name) != name:
		return invalidName(name, "must not have leading or trailing whitespace")
	case strings.HasPrefix(name, "-"):
		return invalidName(name, "must not start with a hyphen")
	case reservedNames[strings.ToLower(name)]:
		return invalidName(name, "is a reserved name")
	case !namePattern.MatchString(name):
		return invalidName(name, "may contain only letters, digits and hyphens, and must start and end with a letter or digit")
	}
	return nil
}

// NameChecker answers name availability queries; *devops.Client satisfies it.
type NameChecker interface {
	CheckNameAvailability(ctx context.Context, name string) (*devops.NameAvailability, error)
}

// Validate runs ValidateName and then asks the server whether the name is
// still free. A taken name is a validation error. A failed availability
// query is logged and the name treated as available: the create call is the
// final judge.
func Validate(ctx context.Context, api NameChecker, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	res, err := api.CheckNameAvailability(ctx, name)
	if err != nil {
		logr.FromContextOrDiscard(ctx).Info("organization name availability check failed, continuing", "name", name, "error", err.Error())
		return nil
	}
	if !res.IsAvailable {
		reason := res.UnavailabilityReason
		if reason == "" {
			reason = "is already taken"
		}
		return invalidName(name, reason)
	}
	return nil
}
