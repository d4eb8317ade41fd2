package common

// ToycVersion is the current version of the ToyC compiler.
const ToycVersion = "0.3.1"

// ConfigFileName is the name of the optional project configuration file the
// compiler looks for next to the source file (or in the working directory).
const ConfigFileName = "toyc.toml"
