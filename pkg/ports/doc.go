/*
Package ports defines the driven ports of a stepper deployment.

The core packages (tree, sequencer, table) never touch storage; the session layer
talks to these interfaces and adapters implement them.

  - StateStore: saves and loads named sessions.
  - DistributedLocker: serializes access to one session across replicas.

RunStateStoreContract is a reusable test suite for StateStore implementations.
*/
package ports
