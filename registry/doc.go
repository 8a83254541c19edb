// Package registry holds immutable component definitions and instantiates
// threat components from them.
//
// The registry is read-mostly: registration happens during startup or
// definition loading and is serialized against lookups (single-writer,
// many-reader), while steady-state reads take only the read lock.
// Definitions are deep-copied on the way in and out, so a registered
// definition can never be mutated through an outside reference.
//
// # Registration
//
//	reg := registry.New()
//	err := reg.Register(def)                      // ErrDuplicateType on repeat
//	err = reg.Register(def, registry.Override())  // explicit replacement
//
// # Instantiation
//
//	comp, warnings, err := reg.Instantiate("wildfire", map[string]float64{
//	    "spread": 0.9,
//	})
//
// Overrides are merged onto declared defaults and clamped to the declared
// range; out-of-range values produce non-fatal warnings. Overrides naming
// undeclared properties fail the request, since the property schema is
// closed.
//
// # Definition Files
//
// LoadFile and LoadDir read YAML definition documents, validate them
// against an embedded JSON schema before decoding, and register the result.
package registry
