// Package cli implements the check-haproxy command-line interface.
//
// # Command Structure
//
// The root command runs the check itself, so monitoring systems call it with
// just a socket path:
//
//	check-haproxy <socket>          - Print the plugin line and exit 0/2/3
//	check-haproxy pools <socket>    - Table of every pool, complete or not
//	check-haproxy init              - Create .check-haproxy.yaml
//	check-haproxy version           - Build information
//	check-haproxy completion <sh>   - Shell completion
//
// # Exit Status
//
// The check always prints exactly one line on stdout (or one JSON document
// with --json) and exits with the plugin status: 0 OK, 2 CRITICAL, 3 UNKNOWN.
// Errors are mapped by code. CONFIG and CONNECT errors happen before any data
// flows and are UNKNOWN; TRANSPORT and PARSE errors are CRITICAL. Commands
// that have already written their output return an errors.ExitError so that
// Execute only has to translate it into a status.
//
// Argument and flag problems are usage errors: "UNKNOWN: Invalid number of
// arguments." on stdout, the usage text on stderr, exit 3.
//
// # Flag Handling
//
// Collector flags (--timeout, --attempts, --chunk-size, --command,
// --aggregate, --legacy-redispatch) are persistent on the root command and
// override the config file only when given explicitly. The socket comes from
// the positional argument, else from the config file or CHECK_HAPROXY_SOCKET.
package cli
