// Package structdiff compares two structured values (objects, arrays,
// scalars) and explains mismatches as path-qualified descriptors. Both
// native documents and raw JSON artifacts project into the same Value
// shape, so one comparison implementation serves both.
package structdiff
