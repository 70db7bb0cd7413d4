// Package version reports the build version of the running binary.
package version
