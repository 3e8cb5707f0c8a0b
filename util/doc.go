// Package util provides small parsing helpers shared across packages.
package util
