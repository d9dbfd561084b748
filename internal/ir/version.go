package ir

// ToolVersion is the rxrename release version.
const ToolVersion = "0.1.0"
