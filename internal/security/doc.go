// Package security builds the startup security report: a flat summary of
// the effective hardening settings plus warnings for risky combinations in
// production mode.
package security
