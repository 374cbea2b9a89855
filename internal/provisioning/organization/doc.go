// Package organization resolves or creates the organization and project a
// pipeline is provisioned into.
//
// The Resolver lazily lists the organizations the signed-in identity belongs
// to and caches the listing for one provisioning run. Creating an
// organization polls its acquisition operation and then refreshes the
// listing. Names are validated locally before any remote call.
package organization
