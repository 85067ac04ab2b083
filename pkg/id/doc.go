// Package id generates click identifiers.
//
// A click identifier has the form click_<unix-ms>_<suffix>, where suffix is
// nine lowercase alphanumeric characters. Uniqueness is best-effort: two
// identifiers collide only if they share the same millisecond and suffix.
//
// ID Generation Modes:
//   - ModeFallback: uses math/rand/v2 when crypto/rand fails (default)
//   - ModeStrict: returns an error when crypto/rand fails
//
// Example usage:
//
//	clickID := id.NewClickID()
//
//	gen := id.NewGenerator(&id.GeneratorConfig{Mode: id.ModeStrict})
//	clickID, err := gen.Generate()
package id
