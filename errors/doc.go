// Package errors provides standardized error handling for the emergence
// engine. It defines the engine's error taxonomy as sentinel variables,
// classifies errors by how the caller should react (invalid input, fatal,
// transient), and supplies helpers for consistent error wrapping across
// packages.
//
// # Error Taxonomy
//
// The composition pipeline distinguishes errors by blast radius:
//
//   - ErrUnknownType, ErrEmptyComposition: abort a whole composition and are
//     surfaced to the caller as typed failures.
//   - ErrInvalidComponentState: fatal only to a single pairwise calculation;
//     the engine absorbs it into a neutral result.
//   - ErrPropertyOutOfRange: non-fatal; the value is clamped and a warning is
//     attached to the composed threat.
//   - ErrDuplicateType, ErrInvalidDefinition, ErrInvalidConfig: registration
//     and configuration failures, surfaced at startup.
//
// # Wrapping Convention
//
// All packages wrap errors as "component.method: action failed: %w":
//
//	return errors.WrapInvalid(errors.ErrUnknownType, "Registry", "Instantiate", "definition lookup")
package errors
