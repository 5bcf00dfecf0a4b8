/*
Package ports defines the driven ports (interfaces) of the gmboard session controller.

These interfaces decouple the core logic from external implementations, allowing
sessions to work with various generation backends and in-flight gates.

# Key Interfaces

  - Generator: sends a structured request to the generation collaborator and returns a typed response.
  - Latch: admits at most one in-flight generation request per run (in-process or distributed).
*/
package ports
