// Package config loads and validates environment-driven application configuration.
package config
