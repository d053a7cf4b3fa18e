// Package config provides configuration structures and utilities for
// clickerscrape. It defines the main options for scanning lecture viewers,
// viewer profile selection, and report generation preferences.
package config
