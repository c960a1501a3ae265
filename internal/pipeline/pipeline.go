package pipeline

// The orchestrator that wires discovery, scoring, allocation, compression,
// and emission together lives in internal/composer, not here -- this
// package stays dependency-free (see the doc comment in types.go) so every
// stage package can import it without an import cycle.
