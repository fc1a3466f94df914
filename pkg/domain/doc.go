/*
Package domain contains the shared vocabulary of the stepper module.

It defines the reserved identifiers of a sequence, the error taxonomy shared by the
tree, sequencer and table packages, the lifecycle hooks used for observability and a
few helpers for handling row data. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Step: A read-only view of the unit currently selected in a sequence.
  - CapacityError: Raised when an operation would exceed the configured row limit.
  - LifecycleHooks: Callbacks fired on navigation and commits.
*/
package domain
