package attendascot

// VERSION is the engine version, surfaced in the help message and by the
// versioner plugin
const VERSION = "1.0.0"
