// Package config defines the format-agnostic build-manifest model and the
// Loader interface that format-specific loaders implement. Keeping the
// model free of HCL types lets the planner and scheduler stay ignorant of
// the manifest syntax.
package config
