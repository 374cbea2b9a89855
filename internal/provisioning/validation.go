package provisioning

import (
	"fmt"
	"strings"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/azure"
)

// ValidationIssue is a configuration problem found before any remote call.
type ValidationIssue struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (vi ValidationIssue) Error() string {
	return fmt.Sprintf("[%s] %s: %s", vi.Severity, vi.Field, vi.Message)
}

// IsError returns true if this is an error (not a warning).
func (vi ValidationIssue) IsError() bool {
	return vi.Severity == "error"
}

// ValidationPhase implements the Phase interface for pre-flight validation.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	ctx.Observer.Printf("[Validation] Running pre-flight validation...")

	// Derive the subscription from the resource id when it was not given.
	target := &ctx.Config.Target
	if target.SubscriptionID == "" {
		target.SubscriptionID = azure.SubscriptionFromResourceID(target.ResourceID)
	}

	var errs []ValidationIssue
	for _, issue := range validate(ctx) {
		eventType := EventValidationWarning
		if issue.IsError() {
			eventType = EventValidationError
			errs = append(errs, issue)
		}
		ctx.Observer.Event(Event{
			Type:    eventType,
			Phase:   vp.Name(),
			Message: issue.Message,
			Fields:  map[string]string{"field": issue.Field},
		})
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return &domain.ValidationError{
			Field:  "configuration",
			Reason: "\n  " + strings.Join(msgs, "\n  "),
		}
	}

	ctx.Observer.Printf("[Validation] Validation passed")
	return nil
}

// validate runs all validation checks and returns any errors or warnings.
func validate(ctx *Context) []ValidationIssue {
	var issues []ValidationIssue
	cfg := ctx.Config

	// --- Config structure ---

	if err := cfg.Validate(); err != nil {
		for _, e := range unjoin(err) {
			issues = append(issues, ValidationIssue{
				Field:    "config",
				Message:  e.Error(),
				Severity: "error",
			})
		}
	}

	// --- Target ---

	if cfg.Target.SubscriptionID == "" {
		issues = append(issues, ValidationIssue{
			Field:    "target.subscriptionId",
			Message:  "subscription id is required and could not be derived from target.resourceId",
			Severity: "error",
		})
	}
	if cfg.Target.SubscriptionName == "" {
		issues = append(issues, ValidationIssue{
			Field:    "target.subscriptionName",
			Message:  "subscription name not set, the connection will be labelled with the subscription id",
			Severity: "warning",
		})
	}

	// --- Collaborators ---

	if cfg.Organization.Create && cfg.Organization.Name == "" && cfg.Organization.User == "" && ctx.Prompter == nil {
		issues = append(issues, ValidationIssue{
			Field:    "organization.name",
			Message:  "a new organization needs a name, a user to derive one from, or an interactive prompt",
			Severity: "error",
		})
	}
	if ctx.Git == nil && cfg.Repository.RemoteURL == "" {
		issues = append(issues, ValidationIssue{
			Field:    "repository.remoteUrl",
			Message:  "remote URL is required when no Git working tree is available",
			Severity: "error",
		})
	}

	return issues
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
