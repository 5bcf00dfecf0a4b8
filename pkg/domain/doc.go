/*
Package domain contains the core domain models of the gmboard session controller.

It defines the scenario documents, the derived step catalog, the single mutable
game state of a run and the closed set of typed responses the generation
collaborator may return. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Document: a named Markdown text loaded for a session.
  - Step: a named narrative phase delimited by a header inside a document.
  - Clock: a bounded counter (alert, suspicion, resources...).
  - GameState: the runtime snapshot of a run (active step, options, caches, action log).
  - Response: the sealed sum type of collaborator answers, dispatched through ResponseVisitor.
  - HistoryEntry: a received response stamped with its receipt time.
*/
package domain
