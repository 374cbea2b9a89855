// Package principal creates the service principal a cloud subscription
// connection authenticates with, unless existing credentials are configured.
package principal
