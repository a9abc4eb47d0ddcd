// Package credentials resolves the password used for HTTP basic
// authentication against the gateway. Providers are explicit values handed
// to the components that authenticate; nothing here is process-global.
package credentials
