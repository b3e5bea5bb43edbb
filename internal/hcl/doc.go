// Package hcl loads build manifests written in HCL and translates them
// into the format-agnostic config model. Expressions in task attributes
// may reference values declared in `vars` blocks through the `var.*`
// scope.
package hcl
