// Package wizard collects provisioning input interactively.
//
// RunWizard walks through huh forms and returns a WizardResult; BuildConfig
// turns it into a config.Config and WriteConfig saves it as YAML. Prompter
// answers the freeform questions a provisioning run asks mid-flight
// (organization name, GitHub personal access token).
package wizard
