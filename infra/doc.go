// Package infra contains the adapters behind the core interfaces: the AWS
// Ground Station and sqlite authorities, metrics sinks, the MQTT publisher,
// logging and error reporting. These packages depend only on the interfaces
// defined in the core packages.
package infra
