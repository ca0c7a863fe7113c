// Package types provides shared types for yamlcheck.
// These types are used across multiple packages and are designed for external consumption.
package types
