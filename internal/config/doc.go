// Package config defines the format-agnostic configuration model for the
// application: the immutable SessionSpec that describes the remote session
// to create, the Profile overlay read from configuration files, and the
// Loader interface that format-specific packages implement.
//
// Concrete file formats, such as HCL, are provided in separate packages.
package config
