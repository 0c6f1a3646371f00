// Package utils exposes the ambient helpers shared by the CLI.
//
// ConfigurationLoader layers embedded defaults, configuration files,
// environment variables, and decode hooks on top of Viper. LoggerFactory
// builds zap loggers for a requested level and encoding. FlushingWriter
// keeps streamed child process output visible as it is produced.
package utils
